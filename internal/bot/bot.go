package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/material-kiosk/internal/dialog"
	"github.com/Spok95/material-kiosk/internal/importer"
	"github.com/Spok95/material-kiosk/internal/stock"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	api       API
	log       *slog.Logger
	states    dialog.Store
	adminChat int64
	svc       *stock.Service
	imp       *importer.Processor
	now       func() time.Time
}

// New builds the bot. adminChatID 0 lets every chat run admin commands.
func New(api API, log *slog.Logger, states dialog.Store, adminChatID int64,
	svc *stock.Service, imp *importer.Processor) *Bot {

	return &Bot{
		api: api, log: log, states: states,
		adminChat: adminChatID, svc: svc, imp: imp,
		now: time.Now,
	}
}

// WithClock sets the clock used for default months and file names.
func (b *Bot) WithClock(now func() time.Time) *Bot {
	b.now = now
	return b
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	b.handleCallback(ctx, upd.CallbackQuery)
}

func (b *Bot) isAdmin(chatID int64) bool {
	return b.adminChat == 0 || chatID == b.adminChat
}
