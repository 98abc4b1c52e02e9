package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Session remembers which server the CLI talks to and the project the
// player last touched.
type Session struct {
	APIBaseURL  string `json:"api_base_url,omitempty"`
	LastProject string `json:"last_project,omitempty"`
}

func SessionPath() (string, error) {
	return homedir.Expand("~/.studiosim/cli.json")
}

func SaveSession(s Session) error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o600)
}

// LoadSession returns an empty session when none has been saved yet.
func LoadSession() (Session, error) {
	path, err := SessionPath()
	if err != nil {
		return Session{}, err
	}
	body, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}
	s.APIBaseURL = strings.TrimRight(strings.TrimSpace(s.APIBaseURL), "/")
	return s, nil
}

func ClearSession() error {
	path, err := SessionPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return os.Remove(path)
}

// ResolveBaseURL picks the API address: the flag, then the environment,
// then the saved session, then fallback.
func ResolveBaseURL(flag, env, fallback string) string {
	for _, v := range []string{flag, env} {
		if v = strings.TrimSpace(v); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	if s, err := LoadSession(); err == nil && s.APIBaseURL != "" {
		return s.APIBaseURL
	}
	return strings.TrimRight(fallback, "/")
}
