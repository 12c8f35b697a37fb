package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/material-kiosk/internal/dialog"
	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/stock"
)

// регистрация материала: группа (кнопки) → большая категория → малая → название → цена

const skipMark = "-"

func (b *Bot) startRegistration(ctx context.Context, chatID int64) {
	_ = b.states.Set(ctx, chatID, dialog.StateRegGroup, dialog.Payload{})
	m := tgbotapi.NewMessage(chatID, "자재 그룹을 선택하세요.")
	m.ReplyMarkup = groupKeyboard()
	b.send(m)
}

func (b *Bot) onRegistrationGroup(ctx context.Context, cb *tgbotapi.CallbackQuery, raw string) {
	chatID := cb.Message.Chat.ID
	st, _ := b.states.Get(ctx, chatID)
	if st == nil || st.State != dialog.StateRegGroup {
		_ = b.answerCallback(cb, "만료된 버튼입니다", false)
		return
	}
	g, err := catalog.ParseGroup(raw)
	if err != nil {
		_ = b.answerCallback(cb, "알 수 없는 그룹", true)
		return
	}
	_ = b.states.Set(ctx, chatID, dialog.StateRegMajor, dialog.Payload{"group": string(g)})
	_ = b.answerCallback(cb, g.Label(), false)
	b.editTextAndClear(chatID, cb.Message.MessageID, "그룹: "+g.Label())
	b.reply(chatID, "대분류를 입력하세요."+b.known(ctx, g, ""))
}

func (b *Bot) handleRegistrationStep(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	if text == "" {
		b.reply(chatID, "값을 입력하세요. 취소하려면 /cancel")
		return
	}
	group, _ := dialog.GetString(st.Payload, "group")
	g := catalog.Group(group)

	switch st.State {
	case dialog.StateRegMajor:
		st.Payload["major"] = text
		_ = b.states.Set(ctx, chatID, dialog.StateRegMinor, st.Payload)
		b.reply(chatID, "소분류를 입력하세요 (없으면 "+skipMark+")."+b.known(ctx, g, text))

	case dialog.StateRegMinor:
		if text == skipMark {
			text = ""
		}
		st.Payload["minor"] = text
		_ = b.states.Set(ctx, chatID, dialog.StateRegName, st.Payload)
		b.reply(chatID, "품명을 입력하세요.")

	case dialog.StateRegName:
		st.Payload["name"] = text
		_ = b.states.Set(ctx, chatID, dialog.StateRegPrice, st.Payload)
		b.reply(chatID, "단가를 입력하세요 (원, 없으면 0).")

	case dialog.StateRegPrice:
		major, _ := dialog.GetString(st.Payload, "major")
		minor, _ := dialog.GetString(st.Payload, "minor")
		name, _ := dialog.GetString(st.Payload, "name")
		m, err := b.svc.Register(ctx, stock.RegisterInput{
			Group:     g,
			Major:     major,
			Minor:     minor,
			Name:      name,
			UnitPrice: text,
		})
		_ = b.states.Reset(ctx, chatID)
		if err != nil {
			b.fail(chatID, err)
			return
		}
		b.reply(chatID, "✅ 등록했습니다\n"+formatMaterial(*m))
	}
}

// known подсказывает уже существующие категории группы
func (b *Bot) known(ctx context.Context, g catalog.Group, major string) string {
	cats, err := b.svc.Categories(ctx, g, major)
	if err != nil || len(cats) == 0 {
		return ""
	}
	if len(cats) > findLimit {
		cats = cats[:findLimit]
	}
	return fmt.Sprintf("\n기존: %s", strings.Join(cats, ", "))
}
