package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/material-kiosk/internal/bot"
	httpx "github.com/Spok95/material-kiosk/internal/infra/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the Telegram bot and low stock alerts",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	var b *bot.Bot
	if cfg.Telegram.Token != "" {
		tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		log.Info("bot authorized", "username", tg.Self.UserName)
		b = bot.New(tg, log, a.states, cfg.Telegram.AdminChatID, a.svc, a.imp).WithClock(a.now)
	} else {
		log.Info("telegram token not set, bot disabled")
	}

	api := httpx.NewAPI(log, a.svc, a.imp, cfg.HTTP.ImportLimit).WithClock(a.now)
	srv := httpx.New(cfg.HTTP.Addr, httpx.Router(api, a.metrics))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if b != nil {
		g.Go(func() error { return ignoreCanceled(b.Run(gctx, cfg.Telegram.Timeout)) })
		g.Go(func() error { return ignoreCanceled(b.WatchLowStock(gctx, a.bus, cfg.Stock.LowThreshold)) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("graceful shutdown complete")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
