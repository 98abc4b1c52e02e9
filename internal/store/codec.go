package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"studiosim/internal/game"
)

var (
	ErrNoSave          = errors.New("no save found")
	ErrVersionMismatch = errors.New("save version mismatch")
)

func Encode(s *game.State) ([]byte, error) {
	if s == nil {
		return nil, errors.New("encode save: nil state")
	}
	s.Version = game.SaveVersion
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return raw, nil
}

// Decode checks the version field before decoding the whole document and
// normalizes whatever it loads.
func Decode(raw []byte) (*game.State, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("decode save: invalid json")
	}
	version := gjson.GetBytes(raw, "version")
	if !version.Exists() {
		return nil, fmt.Errorf("%w: missing version", ErrVersionMismatch)
	}
	if version.Type != gjson.Number || version.Int() != game.SaveVersion {
		return nil, fmt.Errorf("%w: got %s, want %d", ErrVersionMismatch, version.Raw, game.SaveVersion)
	}
	var s game.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	return game.Normalize(&s), nil
}
