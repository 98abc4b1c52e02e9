package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"studiosim/internal/game"
)

type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

func (f *File) Load(context.Context) (*game.State, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSave
		}
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNoSave
	}
	return Decode(raw)
}

// Save writes through a temp file and a rename so a crash never leaves a
// half-written save behind.
func (f *File) Save(_ context.Context, s *game.State) error {
	raw, err := Encode(s)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".save-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}

func (f *File) Close() error { return nil }
