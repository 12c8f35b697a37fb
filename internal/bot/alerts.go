package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/material-kiosk/internal/domain/materials"
	"github.com/Spok95/material-kiosk/internal/infra/feed"
	"github.com/Spok95/material-kiosk/internal/stock"
)

// WatchLowStock notifies the admin chat whenever a material drops to zero
// or below threshold. It blocks until ctx is done.
func (b *Bot) WatchLowStock(ctx context.Context, sub feed.Subscriber, threshold int64) error {
	if b.adminChat == 0 {
		b.log.Info("low stock alerts disabled: no admin chat")
		<-ctx.Done()
		return ctx.Err()
	}
	tracker := stock.NewLowStockTracker(threshold)
	load := func(ctx context.Context) ([]materials.Material, error) {
		return b.svc.ListMaterials(ctx, "")
	}
	return feed.Watch(ctx, sub, feed.TopicMaterials, load, func(ms []materials.Material) {
		for _, a := range tracker.Check(ms) {
			b.send(tgbotapi.NewMessage(b.adminChat, alertText(a)))
		}
	})
}

func alertText(a stock.Alert) string {
	if a.Empty {
		return fmt.Sprintf("🚨 재고 소진: %s %s", a.Material.Icon, a.Material.Name)
	}
	return fmt.Sprintf("⚠️ 재고 부족: %s %s (남은 수량 %d)", a.Material.Icon, a.Material.Name, a.Material.Quantity)
}
