package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studiosim/internal/api"
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

	server := api.New(logger, engine, st)
	go server.RunStream(ctx)

	run := runner.New(engine, st, cfg.TickInterval, cfg.AutosaveInterval, cfg.HoursPerSecond, logger)
	runDone := make(chan error, 1)
	go func() { runDone <- run.Run(ctx) }()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("studio api listening", "addr", cfg.Addr, "store", cfg.Store)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	stop()
	if err := <-runDone; err != nil {
		logger.Error("runner stopped with error", "err", err)
		os.Exit(1)
	}
}
