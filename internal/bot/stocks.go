package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/material-kiosk/internal/apperror"
	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/id"
	"github.com/Spok95/material-kiosk/internal/stock"
	"github.com/Spok95/material-kiosk/internal/xlsx"
)

const findLimit = 20

func (b *Bot) handleFind(ctx context.Context, chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		b.reply(chatID, "사용법: /find <검색어>")
		return
	}
	found, err := b.svc.FindMaterials(ctx, text)
	if err != nil {
		b.fail(chatID, err)
		return
	}
	if len(found) == 0 {
		b.reply(chatID, "검색 결과가 없습니다.")
		return
	}
	var sb strings.Builder
	for i, m := range found {
		if i == findLimit {
			fmt.Fprintf(&sb, "… 외 %d건", len(found)-findLimit)
			break
		}
		sb.WriteString(formatMaterial(m))
		sb.WriteString("\n")
	}
	b.reply(chatID, sb.String())
}

// handleReceipt: /in <id> <qty> [note]
func (b *Bot) handleReceipt(ctx context.Context, chatID int64, args []string) {
	if len(args) < 2 {
		b.reply(chatID, "사용법: /in <자재id> <수량> [비고]")
		return
	}
	qty, err := stock.ParseQuantity(args[1])
	if err != nil {
		b.fail(chatID, err)
		return
	}
	b.recordMovement(ctx, chatID, args[0], stock.MovementInput{
		Type:     ledger.MoveIn,
		Quantity: qty,
		Note:     strings.Join(args[2:], " "),
	})
}

// handleWithdrawal: /out <id> <qty> <actor> [note]
func (b *Bot) handleWithdrawal(ctx context.Context, chatID int64, args []string) {
	if len(args) < 3 {
		b.reply(chatID, "사용법: /out <자재id> <수량> <담당자> [비고]")
		return
	}
	qty, err := stock.ParseQuantity(args[1])
	if err != nil {
		b.fail(chatID, err)
		return
	}
	b.recordMovement(ctx, chatID, args[0], stock.MovementInput{
		Type:     ledger.MoveOut,
		Quantity: qty,
		Actor:    args[2],
		Note:     strings.Join(args[3:], " "),
	})
}

func (b *Bot) recordMovement(ctx context.Context, chatID int64, token string, in stock.MovementInput) {
	m, err := b.resolveMaterial(ctx, token)
	if err != nil {
		b.fail(chatID, err)
		return
	}
	e, err := b.svc.RecordMovement(ctx, *m, in)
	if err != nil {
		b.fail(chatID, err)
		return
	}
	b.reply(chatID, "✅ 기록했습니다\n"+formatEntry(*e)+b.stockLine(ctx, e.MaterialID))
}

// handleFix: /fix <entry> <qty>
func (b *Bot) handleFix(ctx context.Context, chatID int64, args []string) {
	if len(args) != 2 {
		b.reply(chatID, "사용법: /fix <기록id> <수량>")
		return
	}
	qty, err := stock.ParseQuantity(args[1])
	if err != nil {
		b.fail(chatID, err)
		return
	}
	e, err := b.resolveEntry(ctx, args[0])
	if err != nil {
		b.fail(chatID, err)
		return
	}
	edited, err := b.svc.EditEntryQuantity(ctx, *e, qty)
	if err != nil {
		b.fail(chatID, err)
		return
	}
	b.reply(chatID, "✏️ 정정했습니다\n"+formatEntry(*edited)+b.stockLine(ctx, edited.MaterialID))
}

// handleUndo: /undo <entry>
func (b *Bot) handleUndo(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 {
		b.reply(chatID, "사용법: /undo <기록id>")
		return
	}
	e, err := b.resolveEntry(ctx, args[0])
	if err != nil {
		b.fail(chatID, err)
		return
	}
	if err := b.svc.DeleteEntry(ctx, *e); err != nil {
		b.fail(chatID, err)
		return
	}
	b.reply(chatID, "🗑 삭제했습니다\n"+formatEntry(*e)+b.stockLine(ctx, e.MaterialID))
}

// stockLine: текущий остаток после операции, у удалённого материала пусто
func (b *Bot) stockLine(ctx context.Context, materialID id.ID) string {
	m, err := b.svc.GetMaterial(ctx, materialID)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\n현재고: %d", m.Quantity)
}

func (b *Bot) sendStockExport(ctx context.Context, chatID int64) {
	ms, err := b.svc.ListMaterials(ctx, "")
	if err != nil {
		b.fail(chatID, err)
		return
	}
	var buf bytes.Buffer
	if err := xlsx.WriteStock(&buf, ms); err != nil {
		b.fail(chatID, err)
		return
	}
	total, err := b.svc.TotalValue(ctx)
	if err != nil {
		b.fail(chatID, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  xlsx.StockFileName(b.now()),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("재고현황: 자재 %d종, 재고금액 합계 %d원", len(ms), total)
	b.send(doc)
}

// handleLedgerExport: /ledger [YYYY-MM] [group]; без аргументов берётся текущий месяц
func (b *Bot) handleLedgerExport(ctx context.Context, chatID int64, args []string) {
	now := b.now()
	f := ledger.Filter{Year: now.Year(), Month: int(now.Month())}
	if len(args) > 0 {
		month, err := time.Parse("2006-01", args[0])
		if err != nil {
			b.reply(chatID, "사용법: /ledger [YYYY-MM] [그룹]")
			return
		}
		f.Year, f.Month = month.Year(), int(month.Month())
	}
	if len(args) > 1 {
		g, err := catalog.ParseGroup(strings.Join(args[1:], " "))
		if err != nil {
			b.fail(chatID, apperror.NewValidation(err.Error()))
			return
		}
		f.Group = g
	}

	entries, err := b.svc.ListEntries(ctx, f)
	if err != nil {
		b.fail(chatID, err)
		return
	}
	var buf bytes.Buffer
	if err := xlsx.WriteLedger(&buf, entries); err != nil {
		b.fail(chatID, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  xlsx.LedgerFileName(f.Year, f.Month),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("%04d-%02d 입출고 %d건", f.Year, f.Month, len(entries))
	if f.Group != "" {
		doc.Caption += " · " + f.Group.Label()
	}
	b.send(doc)
}

func (b *Bot) handleImportExcel(ctx context.Context, chatID int64, name string, data []byte) {
	sum, err := b.imp.ImportWorkbook(ctx, bytes.NewReader(data))
	if err != nil {
		b.fail(chatID, err)
		return
	}
	b.log.Info("bot import", "chat_id", chatID, "file", name, "inserted", sum.Inserted, "updated", sum.Updated)
	text := fmt.Sprintf("📥 가져오기 완료\n신규 %d · 갱신 %d · 건너뜀 %d", sum.Inserted, sum.Updated, sum.Skipped)
	if len(sum.IgnoredSheets) > 0 {
		text += "\n무시된 시트: " + strings.Join(sum.IgnoredSheets, ", ")
	}
	b.reply(chatID, text)
}

func (b *Bot) handleAudit(ctx context.Context, chatID int64) {
	report, err := b.svc.Audit(ctx)
	if err != nil {
		b.fail(chatID, err)
		return
	}
	unexplained := report.Unexplained()
	text := fmt.Sprintf("🔎 대조 결과: 자재 %d종, 장부와 다른 자재 %d종, 고아 기록 %d건",
		len(report.Lines), len(unexplained), len(report.Orphans))
	for i, l := range unexplained {
		if i == findLimit {
			break
		}
		text += fmt.Sprintf("\n· %s: 현재고 %d, 장부 합계 %d (기초 %d)", l.Material.Name, l.Material.Quantity, l.LedgerNet, l.Opening)
	}
	b.reply(chatID, text)
}

func (b *Bot) resolveMaterial(ctx context.Context, token string) (*materials.Material, error) {
	if full, err := id.Parse(token); err == nil {
		return b.svc.GetMaterial(ctx, full)
	}
	all, err := b.svc.ListMaterials(ctx, "")
	if err != nil {
		return nil, err
	}
	ids := make([]id.ID, 0, len(all))
	for _, m := range all {
		ids = append(ids, m.ID)
	}
	materialID, err := matchID(token, ids)
	if err != nil {
		return nil, err
	}
	return b.svc.GetMaterial(ctx, materialID)
}

func (b *Bot) resolveEntry(ctx context.Context, token string) (*ledger.Entry, error) {
	if full, err := id.Parse(token); err == nil {
		return b.svc.GetEntry(ctx, full)
	}
	all, err := b.svc.ListEntries(ctx, ledger.Filter{})
	if err != nil {
		return nil, err
	}
	ids := make([]id.ID, 0, len(all))
	for _, e := range all {
		ids = append(ids, e.ID)
	}
	entryID, err := matchID(token, ids)
	if err != nil {
		return nil, err
	}
	return b.svc.GetEntry(ctx, entryID)
}
