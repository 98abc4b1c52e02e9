package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"studiosim/internal/game"
	"studiosim/internal/store"
)

// Runner drives an engine in real time and autosaves it.
type Runner struct {
	Engine         *game.Engine
	Store          store.Store
	Interval       time.Duration
	AutosaveEvery  time.Duration
	HoursPerSecond float64
	Logger         *slog.Logger

	now func() time.Time
}

func New(engine *game.Engine, st store.Store, interval, autosave time.Duration, hoursPerSecond float64, logger *slog.Logger) *Runner {
	return &Runner{
		Engine:         engine,
		Store:          st,
		Interval:       interval,
		AutosaveEvery:  autosave,
		HoursPerSecond: hoursPerSecond,
		Logger:         logger,
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Save writes the current engine state through the store.
func (r *Runner) Save(ctx context.Context) error {
	if r.Store == nil {
		return errors.New("runner has no store")
	}
	return r.Store.Save(ctx, r.Engine.Snapshot())
}

// Run advances the engine on every tick until ctx is cancelled or the game
// ends. The state is saved on the autosave interval and once more on exit.
func (r *Runner) Run(ctx context.Context) error {
	if r.Engine == nil {
		return errors.New("runner has no engine")
	}
	if r.Interval <= 0 {
		return errors.New("runner interval must be positive")
	}
	log := r.logger()

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	last := r.clock()
	lastSave := last
	log.Info("runner started", "interval", r.Interval.String(), "hours_per_second", r.HoursPerSecond)

	for {
		select {
		case <-ctx.Done():
			log.Info("runner shutdown")
			return r.final()
		case <-ticker.C:
			now := r.clock()
			elapsed := now.Sub(last).Seconds()
			last = now
			if days := r.Engine.Tick(elapsed, r.HoursPerSecond); days > 0 {
				log.Debug("days settled", "days", days)
			}
			if reason := r.Engine.GameOver(); reason != "" {
				log.Warn("runner stopping, game over", "reason", reason)
				return r.final()
			}
			if r.Store != nil && r.AutosaveEvery > 0 && now.Sub(lastSave) >= r.AutosaveEvery {
				if err := r.Save(ctx); err != nil {
					log.Error("autosave failed", "err", err)
				} else {
					log.Debug("autosaved")
				}
				lastSave = now
			}
		}
	}
}

func (r *Runner) final() error {
	if r.Store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.Save(ctx); err != nil {
		r.logger().Error("final save failed", "err", err)
		return err
	}
	return nil
}
