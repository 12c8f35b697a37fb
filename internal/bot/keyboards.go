package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/material-kiosk/internal/domain/catalog"
)

const (
	btnStock  = "📊 재고현황"
	btnLedger = "📒 이번 달 입출고"
	btnImport = "📥 엑셀 가져오기"
	btnReg    = "➕ 자재 등록"
)

func navKeyboard(cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ 취소", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// groupKeyboard: выбор группы категорий при регистрации
func groupKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	for _, g := range catalog.Groups() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(g.Label(), "reg:group:"+string(g)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row, navKeyboard(true).InlineKeyboard[0])
}

// mainReplyKeyboard Нижняя панель (ReplyKeyboard)
func mainReplyKeyboard(admin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		{tgbotapi.NewKeyboardButton(btnStock), tgbotapi.NewKeyboardButton(btnLedger)},
	}
	if admin {
		rows = append(rows, []tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton(btnImport), tgbotapi.NewKeyboardButton(btnReg),
		})
	}
	return tgbotapi.ReplyKeyboardMarkup{ResizeKeyboard: true, Keyboard: rows}
}
