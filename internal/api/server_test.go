package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"studiosim/internal/game"
	"studiosim/internal/store"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, s *game.State, st store.Store) (*Server, *game.Engine) {
	t.Helper()
	e := game.NewEngine(s, game.NewRand(11), game.DefaultBalance(), quiet())
	return New(quiet(), e, st), e
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func dex() game.ProjectConfig {
	return game.ProjectConfig{
		Title:     "Moon Swap",
		Archetype: "dex",
		Narrative: "defi",
		Chain:     "ethereum",
		Audience:  "degens",
		Scale:     1,
		Budget:    50_000,
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	code, out := do(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, out["ok"])
}

func TestProjectLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	h := srv.Handler()

	bad := dex()
	bad.Budget = 10
	code, out := do(t, h, http.MethodPost, "/v1/projects", bad)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, false, out["ok"])
	require.Contains(t, out["msg"], "budget")

	code, out = do(t, h, http.MethodPost, "/v1/projects", dex())
	require.Equal(t, http.StatusCreated, code)
	id := out["project"].(map[string]any)["id"].(string)
	require.NotEmpty(t, id)

	code, out = do(t, h, http.MethodGet, "/v1/projects/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, out, "view")

	code, _ = do(t, h, http.MethodPost, "/v1/projects/"+id+"/start", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodPost, "/v1/projects/"+id+"/start", nil)
	require.Equal(t, http.StatusConflict, code)

	code, out = do(t, h, http.MethodGet, "/v1/queue/stage", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, id, out["request"].(map[string]any)["projectId"])

	code, _ = do(t, h, http.MethodDelete, "/v1/projects/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	code, out = do(t, h, http.MethodGet, "/v1/projects/"+id, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, false, out["ok"])
}

func TestUnknownFieldsRejected(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	code, out := do(t, srv.Handler(), http.MethodPost, "/v1/clock", map[string]any{"action": "pause", "bogus": 1})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, false, out["ok"])
}

func TestClock(t *testing.T) {
	srv, e := newTestServer(t, nil, nil)
	h := srv.Handler()

	code, out := do(t, h, http.MethodPost, "/v1/clock", map[string]any{"action": "advance", "hours": 48})
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 2, out["days"])

	code, _ = do(t, h, http.MethodPost, "/v1/clock", map[string]any{"action": "pause"})
	require.Equal(t, http.StatusOK, code)
	_, out = do(t, h, http.MethodPost, "/v1/clock", map[string]any{"action": "advance", "hours": 48})
	require.EqualValues(t, 0, out["days"])

	_, out = do(t, h, http.MethodPost, "/v1/clock", map[string]any{"action": "speed", "speed": 100})
	require.EqualValues(t, game.MaxSpeed, out["time"].(map[string]any)["speed"])
	require.Equal(t, game.MaxSpeed, e.Snapshot().Time.Speed)

	code, _ = do(t, h, http.MethodPost, "/v1/clock", map[string]any{"action": "rewind"})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestClockAdvanceIsBounded(t *testing.T) {
	srv, e := newTestServer(t, nil, nil)
	h := srv.Handler()

	code, out := do(t, h, http.MethodPost, "/v1/clock", map[string]any{"action": "advance", "hours": 1e9})
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, out["msg"], "8736")

	code, _ = do(t, h, http.MethodPost, "/v1/clock", map[string]any{"action": "advance", "hours": maxAdvanceHours + 1})
	require.Equal(t, http.StatusBadRequest, code)
	require.Zero(t, e.Snapshot().Time.ElapsedHours)
}

func TestGameOverBlocksMutations(t *testing.T) {
	s := game.NewState(game.NewRand(2))
	s.Resources.Cash = -150_000
	srv, _ := newTestServer(t, s, nil)
	h := srv.Handler()

	_, out := do(t, h, http.MethodPost, "/v1/clock", map[string]any{"action": "advance", "hours": 24})
	require.Equal(t, "bankrupt", out["gameOver"])

	code, out := do(t, h, http.MethodPost, "/v1/projects", dex())
	require.Equal(t, http.StatusConflict, code)
	require.Contains(t, out["msg"], "game over")

	code, _ = do(t, h, http.MethodPost, "/v1/clock", map[string]any{"action": "resume"})
	require.Equal(t, http.StatusConflict, code)
}

func TestDomainErrorStatuses(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	h := srv.Handler()

	code, _ := do(t, h, http.MethodPost, "/v1/team/hire", map[string]any{"candidateId": "nobody"})
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodPost, "/v1/negotiation/move", map[string]any{"move": "anchor"})
	require.Equal(t, http.StatusConflict, code)

	code, _ = do(t, h, http.MethodPost, "/v1/products/nope/abandon", map[string]any{"policy": "sunset"})
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodGet, "/v1/recipes/preview", nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, out := do(t, h, http.MethodGet, "/v1/recipes/preview?archetype=dex&narrative=defi&chain=ethereum&audience=degens", nil)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, out, "combo")
}

func TestNegotiationOverHTTP(t *testing.T) {
	srv, e := newTestServer(t, nil, nil)
	h := srv.Handler()

	lead := e.Market().Leads[0]
	code, out := do(t, h, http.MethodPost, "/v1/negotiation", map[string]any{"leadId": lead.ID})
	require.Equal(t, http.StatusCreated, code)
	require.Contains(t, out, "negotiation")

	_, out = do(t, h, http.MethodGet, "/v1/market", nil)
	moves := out["market"].(map[string]any)["moves"].([]any)
	require.Contains(t, moves, "sign")

	code, out = do(t, h, http.MethodPost, "/v1/negotiation/move", map[string]any{"move": "cancel"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, out["result"].(map[string]any)["done"])
}

func TestReadEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	h := srv.Handler()
	for path, key := range map[string]string{
		"/v1/state":         "state",
		"/v1/team":          "team",
		"/v1/research":      "research",
		"/v1/products":      "products",
		"/v1/inbox":         "items",
		"/v1/cash/estimate": "estimate",
	} {
		code, out := do(t, h, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code, path)
		require.Contains(t, out, key, path)
	}
	code, out := do(t, h, http.MethodPost, "/v1/queue/ratings/drain", nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, out["ratings"])
}

func TestSave(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	code, _ := do(t, srv.Handler(), http.MethodPost, "/v1/save", nil)
	require.Equal(t, http.StatusServiceUnavailable, code)

	path := filepath.Join(t.TempDir(), "save.json")
	srv, _ = newTestServer(t, nil, store.NewFile(path))
	code, out := do(t, srv.Handler(), http.MethodPost, "/v1/save", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "2025-01-06", out["savedAt"])

	_, err := store.NewFile(path).Load(context.Background())
	require.NoError(t, err)
}

func TestStreamPushesDayReports(t *testing.T) {
	srv, e := newTestServer(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.RunStream(ctx)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() game.DayReport {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var r game.DayReport
		require.NoError(t, conn.ReadJSON(&r))
		return r
	}

	first := read()
	require.Equal(t, 0, first.Now.DayNum)

	require.Eventually(t, func() bool { return srv.hub.Clients() == 1 }, 5*time.Second, 5*time.Millisecond)
	e.Advance(24)
	next := read()
	require.Equal(t, 1, next.Now.DayNum)
}
