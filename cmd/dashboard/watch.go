package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/cryptodash/config"
	"github.com/alejandrodnm/cryptodash/internal/adapters/httpapi"
	"github.com/alejandrodnm/cryptodash/internal/adapters/indodax"
	"github.com/alejandrodnm/cryptodash/internal/adapters/notify"
	"github.com/alejandrodnm/cryptodash/internal/adapters/storage"
	"github.com/alejandrodnm/cryptodash/internal/monitor"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// runWatch vigila el par configurado, persiste cada observación y, si hay
// server.addr, sirve la API HTTP en paralelo.
func runWatch(ctx context.Context, cfg *config.Config, opts options) error {
	slog.Info("cryptodash starting",
		"config", opts.cfgPath,
		"pair", cfg.Monitor.Pair,
		"interval", cfg.PollInterval(),
		"once", opts.once,
		"http", cfg.Server.Addr,
	)

	client := newClient(cfg)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN, cfg.Retention())
	if err != nil {
		return fmt.Errorf("open storage %q: %w", cfg.Storage.DSN, err)
	}
	defer store.Close()

	metrics := monitor.NewMetrics()
	notifier := notify.NewConsole(opts.table)

	monCfg := monitor.DefaultConfig()
	monCfg.Pair = indodax.NormalizePair(cfg.Monitor.Pair)
	monCfg.PollInterval = cfg.PollInterval()
	monCfg.MaxHistory = cfg.Monitor.MaxHistory
	monCfg.SeedTimeframe = cfg.Monitor.SeedTimeframe
	monCfg.SeedLookback = cfg.SeedLookback()
	monCfg.Once = opts.once

	mon := monitor.New(monCfg, client, client, client, store, notifier, metrics)

	if opts.once {
		return mon.Run(ctx)
	}

	pruner, err := schedulePrune(ctx, cfg, store)
	if err != nil {
		return err
	}
	pruner.Start()
	defer pruner.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mon.Run(gctx) })

	if cfg.Server.Addr != "" {
		api := httpapi.New(slog.Default(),
			httpapi.WithSignals(mon),
			httpapi.WithHistory(store),
			httpapi.WithScreener(monitor.NewScreener(client)),
			httpapi.WithHighlights(cfg.Market.Highlights),
			httpapi.WithMetrics(metrics.Handler()),
		)
		g.Go(func() error { return api.ListenAndServe(gctx, cfg.Server.Addr) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("cryptodash stopped cleanly")
	return nil
}

// schedulePrune programa el borrado de observaciones más viejas que la retención.
func schedulePrune(ctx context.Context, cfg *config.Config, store *storage.SQLiteStorage) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	retention := cfg.Retention()
	_, err := c.AddFunc(cfg.Storage.PruneCron, func() {
		n, err := store.Prune(ctx, time.Now().Add(-retention))
		if err != nil {
			slog.Warn("prune failed", "err", err)
			return
		}
		slog.Debug("observations pruned", "rows", n)
	})
	if err != nil {
		return nil, fmt.Errorf("storage.prune_cron %q: %w", cfg.Storage.PruneCron, err)
	}
	return c, nil
}

func newClient(cfg *config.Config) *indodax.Client {
	var opts []indodax.Option
	if cfg.API.DepthURL != "" {
		opts = append(opts, indodax.WithDepthURL(cfg.API.DepthURL))
	}
	return indodax.NewClient(cfg.API.BaseURL, opts...)
}
