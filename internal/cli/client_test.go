package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"

	"studiosim/internal/game"
)

func TestDoParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/projects", r.URL.Path)
		var in game.ProjectConfig
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true,"project":{"id":"p1","title":"` + in.Title + `"}}`))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, nil).CreateProject(context.Background(), game.ProjectConfig{Title: "Moon Swap"})
	require.NoError(t, err)
	require.Equal(t, "p1", out.Get("project.id").String())
	require.Equal(t, "Moon Swap", out.Get("project.title").String())
}

func TestDoReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"ok":false,"msg":"insufficient cash: kickoff costs $10,000"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).StartProject(context.Background(), "p1")
	require.Error(t, err)
	require.True(t, IsAPIError(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusPaymentRequired, apiErr.Status)
	require.Contains(t, apiErr.Msg, "insufficient cash")
}

func TestRetriesReadsOnlyOnGatewayErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"ok":false,"msg":"busy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"state":{"resources":{"cash":250000}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.HTTP.RetryWaitMin = 0
	c.HTTP.RetryWaitMax = 0
	out, err := c.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, 250000.0, out.Get("state.resources.cash").Float())
	require.EqualValues(t, 3, hits.Load())

	hits.Store(0)
	_, err = c.Clock(context.Background(), "advance", 0, 24)
	require.Error(t, err)
	require.EqualValues(t, 1, hits.Load())
}

func TestStreamURL(t *testing.T) {
	require.Equal(t, "ws://localhost:8080/v1/stream", NewClient("http://localhost:8080/", nil).StreamURL())
	require.Equal(t, "wss://studio.example/v1/stream", NewClient("https://studio.example", nil).StreamURL())
}

func TestSessionRoundTrip(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	t.Setenv("HOME", t.TempDir())

	s, err := LoadSession()
	require.NoError(t, err)
	require.Equal(t, Session{}, s)
	require.Equal(t, "http://fallback", ResolveBaseURL("", "", "http://fallback"))

	require.NoError(t, SaveSession(Session{APIBaseURL: "http://saved:8080/", LastProject: "p1"}))
	s, err = LoadSession()
	require.NoError(t, err)
	require.Equal(t, "http://saved:8080", s.APIBaseURL)
	require.Equal(t, "p1", s.LastProject)

	require.Equal(t, "http://saved:8080", ResolveBaseURL("", "", "http://fallback"))
	require.Equal(t, "http://env", ResolveBaseURL("", "http://env/", "http://fallback"))
	require.Equal(t, "http://flag", ResolveBaseURL("http://flag", "http://env", "http://fallback"))

	require.NoError(t, ClearSession())
	s, err = LoadSession()
	require.NoError(t, err)
	require.Empty(t, s.APIBaseURL)
}
