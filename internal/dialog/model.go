package dialog

type State string

const (
	StateIdle State = "idle"

	// ожидание .xlsx для импорта каталога
	StateAwaitImportFile State = "await_import_file"

	// регистрация материала: группа → категории → название → цена
	StateRegGroup State = "reg_group"
	StateRegMajor State = "reg_major"
	StateRegMinor State = "reg_minor"
	StateRegName  State = "reg_name"
	StateRegPrice State = "reg_price"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
