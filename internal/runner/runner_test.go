package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studiosim/internal/game"
	"studiosim/internal/store"
)

type countingStore struct {
	mu    sync.Mutex
	saves int
	last  *game.State
	err   error
}

func (c *countingStore) Load(context.Context) (*game.State, error) { return nil, store.ErrNoSave }
func (c *countingStore) Close() error                              { return nil }
func (c *countingStore) Save(_ context.Context, s *game.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	c.last = s
	return c.err
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock moves one second forward per reading.
func fakeClock() func() time.Time {
	var mu sync.Mutex
	t := time.Unix(0, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newRunner(e *game.Engine, st store.Store) *Runner {
	r := New(e, st, time.Millisecond, 3*time.Second, 24, quiet())
	r.now = fakeClock()
	return r
}

func TestRunStopsOnGameOver(t *testing.T) {
	s := game.NewState(game.NewRand(3))
	s.Resources.Cash = -150_000
	e := game.NewEngine(s, game.NewRand(3), game.DefaultBalance(), quiet())

	path := filepath.Join(t.TempDir(), "save.json")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, newRunner(e, store.NewFile(path)).Run(ctx))
	require.NoError(t, ctx.Err(), "runner should stop before the deadline")

	saved, err := store.NewFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "bankrupt", saved.Flags.GameOver)
	require.True(t, saved.Time.Paused)
}

func TestRunAdvancesAndSavesOnCancel(t *testing.T) {
	e := game.NewEngine(nil, game.NewRand(5), game.DefaultBalance(), quiet())
	st := &countingStore{}

	var mu sync.Mutex
	days := 0
	e.OnDay(func(game.DayReport) {
		mu.Lock()
		days++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- newRunner(e, st).Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return days >= 5
	}, 5*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.GreaterOrEqual(t, st.count(), 2, "autosave plus final save")
	require.Greater(t, st.last.Time.ElapsedHours, 0.0)
}

func TestRunPausedDoesNotAdvance(t *testing.T) {
	e := game.NewEngine(nil, game.NewRand(5), game.DefaultBalance(), quiet())
	e.Pause()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, newRunner(e, nil).Run(ctx))
	require.Zero(t, e.Snapshot().Time.ElapsedHours)
}

func TestFinalSaveErrorIsReturned(t *testing.T) {
	e := game.NewEngine(nil, game.NewRand(5), game.DefaultBalance(), quiet())
	st := &countingStore{err: errors.New("disk full")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := newRunner(e, st).Run(ctx)
	require.ErrorContains(t, err, "disk full")
}

func TestRunRejectsBadSetup(t *testing.T) {
	require.Error(t, (&Runner{}).Run(context.Background()))
	e := game.NewEngine(nil, nil, game.DefaultBalance(), quiet())
	require.Error(t, (&Runner{Engine: e}).Run(context.Background()))
}
