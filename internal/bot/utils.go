package bot

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
)

/*** HELPERS ***/

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) error {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	_, err := b.api.Request(resp)
	return err
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// fail отвечает пользователю текстом ошибки и пишет в лог всё, что не
// является ожидаемой бизнес-ошибкой
func (b *Bot) fail(chatID int64, err error) {
	if _, ok := apperror.AsAppError(err); !ok || apperror.HasCode(err, apperror.CodeInternal) {
		b.log.Error("bot command failed", "chat_id", chatID, "err", err)
	}
	b.reply(chatID, errorText(err))
}

// downloadTelegramFile скачивает файл по FileID через Telegram API.
func (b *Bot) downloadTelegramFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram returned status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}

// shortID: последние 8 символов UUID, у v7 начало совпадает у соседних записей
func shortID(v id.ID) string {
	s := v.String()
	return s[len(s)-8:]
}

// matchID ищет среди ids полный UUID или уникальный хвост из 8+ символов.
func matchID(token string, ids []id.ID) (id.ID, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if full, err := id.Parse(token); err == nil {
		return full, nil
	}
	if len(token) < 8 {
		return id.ID{}, apperror.NewValidation("id must be a UUID or its last 8 characters").WithDetail("id", token)
	}
	var found []id.ID
	for _, v := range ids {
		if strings.HasSuffix(v.String(), token) {
			found = append(found, v)
		}
	}
	switch len(found) {
	case 0:
		return id.ID{}, apperror.NewNotFound("record", token)
	case 1:
		return found[0], nil
	default:
		return id.ID{}, apperror.NewValidation("short id matches several records").WithDetail("id", token)
	}
}

func formatMaterial(m materials.Material) string {
	cat := m.Major
	if m.Minor != "" {
		cat += "/" + m.Minor
	}
	line := fmt.Sprintf("%s %s [%s · %s] 재고 %d", m.Icon, m.Name, m.Group.Label(), cat, m.Quantity)
	if m.Code != "" {
		line += " · " + m.Code
	}
	return line + fmt.Sprintf("\n   id: %s", shortID(m.ID))
}

func formatEntry(e ledger.Entry) string {
	kind := "입고"
	if e.Type == ledger.MoveOut {
		kind = "출고"
	}
	line := fmt.Sprintf("%s %s %s %d", e.Date.Format(ledger.DateLayout), kind, e.MaterialName, e.Quantity)
	if e.Actor != "" {
		line += " · " + e.Actor
	}
	if e.Note != "" {
		line += " (" + e.Note + ")"
	}
	return line + fmt.Sprintf("\n   기록 id: %s", shortID(e.ID))
}

// errorText переводит AppError в сообщение для пользователя
func errorText(err error) string {
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		return "⚠️ 내부 오류가 발생했습니다. 잠시 후 다시 시도하세요."
	}
	switch appErr.Code {
	case apperror.CodeInsufficientStock:
		return fmt.Sprintf("❌ 재고 부족: 요청 %v, 현재 %v", appErr.Details["requested"], appErr.Details["available"])
	case apperror.CodeNegativeStock:
		return fmt.Sprintf("❌ 재고가 음수가 됩니다 (현재 %v, 변경 %v)", appErr.Details["current"], appErr.Details["delta"])
	case apperror.CodeNotFound:
		return "❌ 대상을 찾을 수 없습니다."
	case apperror.CodeValidation:
		return "❌ 입력 오류: " + appErr.Message
	case apperror.CodeImportRead:
		return "❌ 엑셀 파일을 읽을 수 없습니다 (.xlsx 파일인지 확인하세요)."
	case apperror.CodeConcurrentModification:
		return "⚠️ 다른 사용자가 먼저 수정했습니다. 다시 시도하세요."
	default:
		return "⚠️ 내부 오류가 발생했습니다. 잠시 후 다시 시도하세요."
	}
}
