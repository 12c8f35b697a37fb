package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/material-kiosk/internal/config"
	"github.com/Spok95/material-kiosk/internal/dialog"
	"github.com/Spok95/material-kiosk/internal/importer"
	"github.com/Spok95/material-kiosk/internal/infra/db"
	"github.com/Spok95/material-kiosk/internal/infra/feed"
	"github.com/Spok95/material-kiosk/internal/infra/logger"
	"github.com/Spok95/material-kiosk/internal/infra/memstore"
	"github.com/Spok95/material-kiosk/internal/infra/metrics"
	"github.com/Spok95/material-kiosk/internal/stock"
)

type bus interface {
	feed.Publisher
	feed.Subscriber
}

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	states  dialog.Store
	bus     bus
	metrics *metrics.Metrics
	svc     *stock.Service
	imp     *importer.Processor
	now     func() time.Time
	closers []func()
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, log: logger.New(cfg.App.Env, cfg.Log.Format)}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.App.Timezone, err)
	}
	a.now = func() time.Time { return time.Now().In(loc) }

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
	}

	var store stock.Store
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := db.Migrate(cfg.Postgres.DSN, a.log); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := db.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		a.log.Info("db connected")
		store = db.NewUnitOfWork(pool)
		a.states = dialog.NewRepo(pool)
	default:
		a.log.Warn("using in-memory storage, data is lost on exit")
		store = memstore.New()
		a.states = dialog.NewMemory()
	}

	if cfg.Redis.Addr != "" {
		client, err := feed.Connect(ctx, cfg.Redis.Addr)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.bus = feed.NewRedis(client, cfg.Redis.Prefix)
		a.log.Info("change feed on redis", "addr", cfg.Redis.Addr)
	} else {
		a.bus = feed.NewLocal()
	}

	a.svc = stock.NewService(store, a.log,
		stock.WithPublisher(a.bus),
		stock.WithMetrics(a.metrics),
		stock.WithClock(a.now),
	)
	a.imp = importer.New(store, a.log, a.bus, a.metrics)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
