package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studiosim/internal/game"
)

type Postgres struct {
	db   *pgxpool.Pool
	slot string
}

func connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func OpenPostgres(ctx context.Context, databaseURL, slot string) (*Postgres, error) {
	pool, err := connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS studio_saves (
			slot text PRIMARY KEY,
			version int NOT NULL,
			body jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create studio_saves: %w", err)
	}
	return &Postgres{db: pool, slot: slot}, nil
}

func (p *Postgres) Load(ctx context.Context) (*game.State, error) {
	var version int
	var body []byte
	err := p.db.QueryRow(ctx, `
		SELECT version, body::text
		FROM studio_saves
		WHERE slot = $1
	`, p.slot).Scan(&version, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", p.slot, err)
	}
	if version != game.SaveVersion {
		return nil, fmt.Errorf("%w: slot %s has version %d", ErrVersionMismatch, p.slot, version)
	}
	return Decode(body)
}

func (p *Postgres) Save(ctx context.Context, s *game.State) error {
	raw, err := Encode(s)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO studio_saves (slot, version, body, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (slot) DO UPDATE SET
			version = EXCLUDED.version,
			body = EXCLUDED.body,
			updated_at = now()
	`, p.slot, game.SaveVersion, string(raw))
	if err != nil {
		return fmt.Errorf("save slot %s: %w", p.slot, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
