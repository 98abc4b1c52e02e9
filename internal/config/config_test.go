package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studiosim/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, StoreFile, cfg.Store)
	require.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	require.Equal(t, 30*time.Second, cfg.AutosaveInterval)
	require.Equal(t, "default", cfg.SaveSlot)
	require.Equal(t, game.DefaultBalance(), cfg.Balance)
	require.NotContains(t, cfg.SavePath, "~")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STUDIO_STORE", "SQLite")
	t.Setenv("STUDIO_SPEED", "40")
	t.Setenv("STUDIO_SEED", "7")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, StoreSQLite, cfg.Store)
	require.Equal(t, int64(7), cfg.Seed)
	require.Equal(t, game.MaxSpeed, cfg.ClampedSpeed())
}

func TestPostgresNeedsURL(t *testing.T) {
	t.Setenv("STUDIO_STORE", "postgres")
	t.Setenv("STUDIO_DATABASE_URL", "")
	_, err := Load()
	require.ErrorContains(t, err, "STUDIO_DATABASE_URL")
}

func TestBadLogLevel(t *testing.T) {
	t.Setenv("STUDIO_LOG_LEVEL", "loud")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadBalanceOverridesAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	require.NoError(t, os.WriteFile(path, []byte("neglect_floor: 0.3\nstage_base_hours: 60\n"), 0o600))

	b, err := LoadBalance(path)
	require.NoError(t, err)
	require.Equal(t, 0.3, b.NeglectFloor)
	require.Equal(t, 60.0, b.StageBaseHours)
	require.Equal(t, game.DefaultBalance().DAUDiffusion, b.DAUDiffusion)
}

func TestLoadBalanceRejectsUnknownAndInvalid(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("moon_factor: 2\n"), 0o600))
	_, err := LoadBalance(unknown)
	require.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("dau_diffusion: 1.5\n"), 0o600))
	_, err = LoadBalance(invalid)
	require.ErrorIs(t, err, game.ErrInvalidInput)
}

func TestBalanceFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	require.NoError(t, os.WriteFile(path, []byte("event_base_chance: 0.5\n"), 0o600))
	t.Setenv("STUDIO_BALANCE_FILE", path)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0.5, cfg.Balance.EventBaseChance)
}

func TestLoadCLI(t *testing.T) {
	t.Setenv("STUDIO_API_URL", "")
	cfg, err := LoadCLI()
	require.NoError(t, err)
	require.Empty(t, cfg.APIBaseURL)

	t.Setenv("STUDIO_API_URL", " http://studio.local:9000/ ")
	cfg, err = LoadCLI()
	require.NoError(t, err)
	require.Equal(t, "http://studio.local:9000", cfg.APIBaseURL)
}
