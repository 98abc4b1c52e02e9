package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"studiosim/internal/game"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS saves (
    slot TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    body TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

type SQLite struct {
	db   *sql.DB
	slot string
}

func OpenSQLite(ctx context.Context, path, slot string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	return &SQLite{db: db, slot: slot}, nil
}

func (s *SQLite) Load(ctx context.Context) (*game.State, error) {
	var version int
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT version, body FROM saves WHERE slot = ?`, s.slot).Scan(&version, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", s.slot, err)
	}
	if version != game.SaveVersion {
		return nil, fmt.Errorf("%w: slot %s has version %d", ErrVersionMismatch, s.slot, version)
	}
	return Decode([]byte(body))
}

func (s *SQLite) Save(ctx context.Context, st *game.State) error {
	raw, err := Encode(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (slot, version, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			version = excluded.version,
			body = excluded.body,
			updated_at = excluded.updated_at
	`, s.slot, game.SaveVersion, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save slot %s: %w", s.slot, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
