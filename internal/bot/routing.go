package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/material-kiosk/internal/dialog"
)

const helpText = `명령어:
/find <검색어> — 자재 검색
/in <자재id> <수량> [비고] — 입고
/out <자재id> <수량> <담당자> [비고] — 출고
/fix <기록id> <수량> — 기록 수량 정정
/undo <기록id> — 기록 삭제
/export — 재고현황 엑셀
/ledger [YYYY-MM] [그룹] — 월별 입출고 엑셀
/import — 엑셀로 자재 가져오기
/register — 자재 등록
/audit — 재고/장부 대조
/cancel — 진행 중인 작업 취소
id는 전체 UUID 또는 마지막 8자리로 입력합니다.`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, helpText)
		m.ReplyMarkup = mainReplyKeyboard(b.isAdmin(chatID))
		b.send(m)

	case "cancel":
		_ = b.states.Reset(ctx, chatID)
		b.reply(chatID, "취소했습니다.")

	case "find":
		b.handleFind(ctx, chatID, strings.Join(args, " "))

	case "in":
		b.handleReceipt(ctx, chatID, args)

	case "out":
		b.handleWithdrawal(ctx, chatID, args)

	case "fix":
		if !b.requireAdmin(chatID) {
			return
		}
		b.handleFix(ctx, chatID, args)

	case "undo":
		if !b.requireAdmin(chatID) {
			return
		}
		b.handleUndo(ctx, chatID, args)

	case "export":
		b.sendStockExport(ctx, chatID)

	case "ledger":
		b.handleLedgerExport(ctx, chatID, args)

	case "import":
		if !b.requireAdmin(chatID) {
			return
		}
		_ = b.states.Set(ctx, chatID, dialog.StateAwaitImportFile, dialog.Payload{})
		m := tgbotapi.NewMessage(chatID, "가져올 엑셀 파일(.xlsx)을 보내주세요. 시트 이름에 전기자재/자동화자재가 들어가야 합니다.")
		m.ReplyMarkup = navKeyboard(true)
		b.send(m)

	case "register":
		if !b.requireAdmin(chatID) {
			return
		}
		b.startRegistration(ctx, chatID)

	case "audit":
		b.handleAudit(ctx, chatID)

	default:
		b.reply(chatID, "알 수 없는 명령입니다. /help 를 입력하세요.")
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch text {
	case btnStock:
		b.sendStockExport(ctx, chatID)
		return
	case btnLedger:
		b.handleLedgerExport(ctx, chatID, nil)
		return
	case btnImport:
		if b.requireAdmin(chatID) {
			_ = b.states.Set(ctx, chatID, dialog.StateAwaitImportFile, dialog.Payload{})
			b.reply(chatID, "가져올 엑셀 파일(.xlsx)을 보내주세요.")
		}
		return
	case btnReg:
		if b.requireAdmin(chatID) {
			b.startRegistration(ctx, chatID)
		}
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.fail(chatID, err)
		return
	}

	switch st.State {
	case dialog.StateAwaitImportFile:
		// ждём документ Excel
		if msg.Document == nil {
			b.reply(chatID, "엑셀 파일(.xlsx)을 첨부해 주세요. 취소하려면 /cancel")
			return
		}
		data, err := b.downloadTelegramFile(msg.Document.FileID)
		if err != nil {
			b.log.Error("download import file", "err", err)
			b.reply(chatID, "텔레그램에서 파일을 받지 못했습니다: "+err.Error())
			return
		}
		_ = b.states.Reset(ctx, chatID)
		b.handleImportExcel(ctx, chatID, msg.Document.FileName, data)

	case dialog.StateRegMajor, dialog.StateRegMinor, dialog.StateRegName, dialog.StateRegPrice:
		b.handleRegistrationStep(ctx, chatID, st, text)

	default:
		b.reply(chatID, "명령어는 /help 에서 확인하세요.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	fromChat := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == "nav:cancel":
		_ = b.states.Reset(ctx, fromChat)
		b.editTextAndClear(fromChat, cb.Message.MessageID, "취소했습니다.")
		_ = b.answerCallback(cb, "취소", false)

	case strings.HasPrefix(data, "reg:group:"):
		b.onRegistrationGroup(ctx, cb, strings.TrimPrefix(data, "reg:group:"))

	default:
		_ = b.answerCallback(cb, "만료된 버튼입니다", false)
	}
}

func (b *Bot) requireAdmin(chatID int64) bool {
	if b.isAdmin(chatID) {
		return true
	}
	b.reply(chatID, "관리자만 사용할 수 있는 명령입니다.")
	return false
}
