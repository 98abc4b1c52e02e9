package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"studiosim/internal/game"
)

func newState(t *testing.T) *game.State {
	t.Helper()
	s := game.NewState(game.NewRand(7))
	s.Resources.Cash = 123_456
	s.Knowledge.KnownArchetypes = []string{"dex"}
	return s
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeRejectsOtherVersions(t *testing.T) {
	for _, raw := range []string{`{"resources":{}}`, `{"version":2}`, `{"version":"1"}`} {
		_, err := Decode([]byte(raw))
		require.ErrorIs(t, err, ErrVersionMismatch, raw)
	}
	_, err := Decode([]byte(`{"version":1,`))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrVersionMismatch)
}

func TestDecodeNormalizes(t *testing.T) {
	s, err := Decode([]byte(`{"version":1,"time":{"speed":99},"resources":{"reputation":400}}`))
	require.NoError(t, err)
	require.Equal(t, game.MaxSpeed, s.Time.Speed)
	require.Equal(t, 100.0, s.Resources.Reputation)
	require.NotNil(t, s.Research.Engines)
}

func TestEncodeOmitsNegotiation(t *testing.T) {
	s := newState(t)
	_, err := game.StartNegotiation(s, s.Market.Leads[0].ID)
	require.NoError(t, err)
	raw, err := Encode(s)
	require.NoError(t, err)
	require.False(t, gjson.GetBytes(raw, "negotiation").Exists())

	back, err := Decode(raw)
	require.NoError(t, err)
	require.Nil(t, back.Negotiation)
	require.Equal(t, s.Resources, back.Resources)
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "save.json")
	st := NewFile(path)

	_, err := st.Load(ctx)
	require.ErrorIs(t, err, ErrNoSave)

	s := newState(t)
	require.NoError(t, st.Save(ctx, s))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, s.Resources, loaded.Resources)
	require.Equal(t, s.Knowledge.KnownArchetypes, loaded.Knowledge.KnownArchetypes)
	require.Len(t, loaded.Team.Members, len(s.Team.Members))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files left behind")
}

func TestSQLiteRoundTripAndOverwrite(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "studio.db"), "slot-a")
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Load(ctx)
	require.ErrorIs(t, err, ErrNoSave)

	s := newState(t)
	require.NoError(t, st.Save(ctx, s))
	s.Resources.Cash = 42
	require.NoError(t, st.Save(ctx, s))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 42.0, loaded.Resources.Cash)
}

func TestLoadOrNewFallsBack(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "save.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99}`), 0o600))

	s, err := LoadOrNew(ctx, NewFile(path), game.NewRand(1), quiet())
	require.NoError(t, err)
	require.Equal(t, game.StartingResources(), s.Resources)

	s, err = LoadOrNew(ctx, NewFile(filepath.Join(t.TempDir(), "missing.json")), game.NewRand(1), quiet())
	require.NoError(t, err)
	require.NotNil(t, s)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))
	_, err = LoadOrNew(ctx, NewFile(path), game.NewRand(1), quiet())
	require.Error(t, err)
}

func TestPostgresRoundTrip(t *testing.T) {
	url := os.Getenv("STUDIO_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("STUDIO_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	st, err := OpenPostgres(ctx, url, "test-"+t.Name())
	require.NoError(t, err)
	defer st.Close()

	s := newState(t)
	require.NoError(t, st.Save(ctx, s))
	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, s.Resources, loaded.Resources)
}
