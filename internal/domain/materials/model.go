package materials

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/id"
)

type Material struct {
	ID        id.ID         `db:"id"`
	Group     catalog.Group `db:"category_group"`
	Major     string        `db:"major_category"`
	Minor     string        `db:"minor_category"`
	Code      string        `db:"code"`
	Name      string        `db:"name"`
	UnitPrice int64         `db:"unit_price"`
	Quantity  int64         `db:"quantity_on_hand"`
	Icon      string        `db:"icon"`
	Version   int64         `db:"version"` // bumped on every write
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// Value is the stock value of the material (price × quantity on hand).
func (m Material) Value() int64 {
	return m.UnitPrice * m.Quantity
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Group     *catalog.Group
	Major     *string
	Minor     *string
	Code      *string
	Name      *string
	UnitPrice *int64
	Quantity  *int64
	Icon      *string
}

func (p Patch) Empty() bool {
	return p.Group == nil && p.Major == nil && p.Minor == nil && p.Code == nil &&
		p.Name == nil && p.UnitPrice == nil && p.Quantity == nil && p.Icon == nil
}

// Apply copies the set fields onto m.
func (p Patch) Apply(m *Material) {
	if p.Group != nil {
		m.Group = *p.Group
	}
	if p.Major != nil {
		m.Major = *p.Major
	}
	if p.Minor != nil {
		m.Minor = *p.Minor
	}
	if p.Code != nil {
		m.Code = *p.Code
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.UnitPrice != nil {
		m.UnitPrice = *p.UnitPrice
	}
	if p.Quantity != nil {
		m.Quantity = *p.Quantity
	}
	if p.Icon != nil {
		m.Icon = *p.Icon
	}
}

// Key is the natural key used by spreadsheet imports.
type Key struct {
	Name  string
	Group catalog.Group
}

func (m Material) Key() Key {
	return Key{Name: m.Name, Group: m.Group}
}

// SortByName orders materials by name using Korean collation.
func SortByName(ms []Material) {
	c := collate.New(language.Korean)
	sort.SliceStable(ms, func(i, j int) bool {
		return c.CompareString(ms[i].Name, ms[j].Name) < 0
	})
}
