package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"studiosim/internal/config"
	"studiosim/internal/game"
	"studiosim/internal/runner"
	"studiosim/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Error("open store failed", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	rng := game.NewRand(cfg.Seed)
	state, err := store.LoadOrNew(ctx, st, rng, logger)
	if err != nil {
		logger.Error("load save failed", "err", err)
		os.Exit(1)
	}
	engine := game.NewEngine(state, rng, cfg.Balance, logger)
	engine.SetSpeed(cfg.ClampedSpeed())
	engine.OnDay(func(r game.DayReport) {
		logger.Debug("day settled", "date", r.Now.DateISO, "cash", r.Resources.Cash, "products", r.Products)
	})

	if cfg.WorkerRunFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.WorkerRunFor)
		defer cancel()
	}

	logger.Info("worker started",
		"tick_every", cfg.TickInterval.String(),
		"hours_per_second", cfg.HoursPerSecond,
		"run_for", cfg.WorkerRunFor.String(),
	)
	if err := runner.New(engine, st, cfg.TickInterval, cfg.AutosaveInterval, cfg.HoursPerSecond, logger).Run(ctx); err != nil {
		logger.Error("worker failed", "err", err)
		os.Exit(1)
	}
	snap := engine.Snapshot()
	logger.Info("worker shutdown", "date", snap.Now.DateISO, "cash", snap.Resources.Cash, "game_over", snap.Flags.GameOver)
}
