package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"studiosim/internal/game"
)

const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Addr     string `env:"STUDIO_API_ADDR" envDefault:":8080"`
	LogLevel string `env:"STUDIO_LOG_LEVEL" envDefault:"info"`

	Store       string `env:"STUDIO_STORE" envDefault:"file"`
	SavePath    string `env:"STUDIO_SAVE_PATH" envDefault:"~/.studiosim/save.json"`
	SQLitePath  string `env:"STUDIO_SQLITE_PATH" envDefault:"~/.studiosim/studio.db"`
	DatabaseURL string `env:"STUDIO_DATABASE_URL"`
	SaveSlot    string `env:"STUDIO_SAVE_SLOT" envDefault:"default"`

	TickInterval     time.Duration `env:"STUDIO_TICK_INTERVAL" envDefault:"250ms"`
	HoursPerSecond   float64       `env:"STUDIO_HOURS_PER_SECOND" envDefault:"1"`
	Speed            float64       `env:"STUDIO_SPEED" envDefault:"1"`
	AutosaveInterval time.Duration `env:"STUDIO_AUTOSAVE_INTERVAL" envDefault:"30s"`
	WorkerRunFor     time.Duration `env:"STUDIO_WORKER_RUN_FOR" envDefault:"0s"`

	Seed        int64  `env:"STUDIO_SEED" envDefault:"0"`
	BalanceFile string `env:"STUDIO_BALANCE_FILE"`

	Balance game.Balance
}

const DefaultAPIURL = "http://localhost:8080"

// CLIConfig leaves APIBaseURL empty when STUDIO_API_URL is unset so a
// saved session can take precedence over DefaultAPIURL.
type CLIConfig struct {
	APIBaseURL string `env:"STUDIO_API_URL"`
}

// Load reads the environment, expands home-relative paths and applies the
// optional balance file on top of the default coefficients.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)

	var err error
	if cfg.SavePath, err = homedir.Expand(cfg.SavePath); err != nil {
		return Config{}, fmt.Errorf("expand STUDIO_SAVE_PATH: %w", err)
	}
	if cfg.SQLitePath, err = homedir.Expand(cfg.SQLitePath); err != nil {
		return Config{}, fmt.Errorf("expand STUDIO_SQLITE_PATH: %w", err)
	}

	cfg.Balance = game.DefaultBalance()
	if cfg.BalanceFile != "" {
		path, err := homedir.Expand(cfg.BalanceFile)
		if err != nil {
			return Config{}, fmt.Errorf("expand STUDIO_BALANCE_FILE: %w", err)
		}
		if cfg.Balance, err = LoadBalance(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("STUDIO_DATABASE_URL is required when STUDIO_STORE=postgres")
		}
	default:
		return fmt.Errorf("STUDIO_STORE must be file, sqlite or postgres, got %q", c.Store)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.TickInterval <= 0 {
		return errors.New("STUDIO_TICK_INTERVAL must be positive")
	}
	if c.HoursPerSecond <= 0 {
		return errors.New("STUDIO_HOURS_PER_SECOND must be positive")
	}
	if c.AutosaveInterval < 0 || c.WorkerRunFor < 0 {
		return errors.New("durations must not be negative")
	}
	if strings.TrimSpace(c.SaveSlot) == "" {
		return errors.New("STUDIO_SAVE_SLOT must not be empty")
	}
	return c.Balance.Validate()
}

// ClampedSpeed returns the configured speed within the simulation's limits.
func (c Config) ClampedSpeed() float64 {
	switch {
	case c.Speed < game.MinSpeed:
		return game.MinSpeed
	case c.Speed > game.MaxSpeed:
		return game.MaxSpeed
	}
	return c.Speed
}

func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("STUDIO_LOG_LEVEL must be debug, info, warn or error, got %q", s)
}

// LoadBalance reads a YAML balance file. Keys left out keep their default
// value; unknown keys are an error.
func LoadBalance(path string) (game.Balance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return game.Balance{}, fmt.Errorf("read balance file: %w", err)
	}
	b := game.DefaultBalance()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return game.Balance{}, fmt.Errorf("parse balance file: %w", err)
	}
	if err := b.Validate(); err != nil {
		return game.Balance{}, fmt.Errorf("balance file %s: %w", path, err)
	}
	return b, nil
}

func LoadCLI() (CLIConfig, error) {
	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return cfg, nil
}
