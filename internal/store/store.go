package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"studiosim/internal/config"
	"studiosim/internal/game"
)

// Store persists one save slot.
type Store interface {
	Load(ctx context.Context) (*game.State, error)
	Save(ctx context.Context, s *game.State) error
	Close() error
}

// Open builds the store selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.Store {
	case config.StoreFile:
		return NewFile(cfg.SavePath), nil
	case config.StoreSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, cfg.SaveSlot)
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg.DatabaseURL, cfg.SaveSlot)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// LoadOrNew loads the slot, starting a fresh studio when there is no save
// or the save is from another version.
func LoadOrNew(ctx context.Context, st Store, r game.Rand, logger *slog.Logger) (*game.State, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := st.Load(ctx)
	switch {
	case err == nil:
		logger.Info("save loaded", "date", s.Now.DateISO, "cash", s.Resources.Cash)
		return s, nil
	case errors.Is(err, ErrNoSave):
		logger.Info("no save found, starting a new studio")
		return game.NewState(r), nil
	case errors.Is(err, ErrVersionMismatch):
		logger.Warn("save version mismatch, starting a new studio", "err", err)
		return game.NewState(r), nil
	default:
		return nil, err
	}
}
