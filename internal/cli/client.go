package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"studiosim/internal/game"
)

// APIError is a {"ok":false} answer from the server.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Msg)
}

func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

type Client struct {
	BaseURL string
	HTTP    *retryablehttp.Client
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 3
	hc.RetryWaitMin = 200 * time.Millisecond
	hc.RetryWaitMax = 2 * time.Second
	hc.HTTPClient.Timeout = 30 * time.Second
	hc.CheckRetry = checkRetry
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	hc.Logger = nil
	if logger != nil {
		hc.Logger = logger
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    hc,
	}
}

// checkRetry retries connection failures for every method but only retries
// gateway errors for reads, so a mutation is never applied twice.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if resp.Request != nil && resp.Request.Method != http.MethodGet {
		return false, nil
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

func (c *Client) Health(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodGet, "/healthz", nil)
	return err
}

func (c *Client) State(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/state", nil)
}

func (c *Client) Clock(ctx context.Context, action string, speed, hours float64) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/clock", map[string]any{
		"action": action,
		"speed":  speed,
		"hours":  hours,
	})
}

func (c *Client) Save(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/save", nil)
}

func (c *Client) CreateProject(ctx context.Context, cfg game.ProjectConfig) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/projects", cfg)
}

func (c *Client) Projects(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/projects", nil)
}

func (c *Client) Project(ctx context.Context, id string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/projects/"+url.PathEscape(id), nil)
}

func (c *Client) StartProject(ctx context.Context, id string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/projects/"+url.PathEscape(id)+"/start", nil)
}

func (c *Client) ConfigureStage(ctx context.Context, id string, prefs map[string]float64) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPut, "/v1/projects/"+url.PathEscape(id)+"/stage", map[string]any{"prefs": prefs})
}

func (c *Client) SetProjectTeam(ctx context.Context, id string, stage int, role, memberID string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPut, "/v1/projects/"+url.PathEscape(id)+"/team", map[string]any{
		"stage":    stage,
		"role":     role,
		"memberId": memberID,
	})
}

func (c *Client) AbandonProject(ctx context.Context, id string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodDelete, "/v1/projects/"+url.PathEscape(id), nil)
}

func (c *Client) Products(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/products", nil)
}

func (c *Client) UpdateOps(ctx context.Context, id string, ops game.Ops) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPatch, "/v1/products/"+url.PathEscape(id)+"/ops", ops)
}

func (c *Client) AbandonProduct(ctx context.Context, id, policy, confirm string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/products/"+url.PathEscape(id)+"/abandon", map[string]any{
		"policy":  policy,
		"confirm": confirm,
	})
}

func (c *Client) Team(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/team", nil)
}

func (c *Client) Hire(ctx context.Context, candidateID string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/team/hire", map[string]any{"candidateId": candidateID})
}

func (c *Client) Fire(ctx context.Context, memberID string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodDelete, "/v1/team/"+url.PathEscape(memberID), nil)
}

func (c *Client) Research(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/research", nil)
}

func (c *Client) StartResearch(ctx context.Context, nodeID, assigneeID, targetID string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/research", map[string]any{
		"nodeId":     nodeID,
		"assigneeId": assigneeID,
		"targetId":   targetID,
	})
}

func (c *Client) Market(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/market", nil)
}

func (c *Client) StartNegotiation(ctx context.Context, leadID string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/negotiation", map[string]any{"leadId": leadID})
}

func (c *Client) NegotiationMove(ctx context.Context, move string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/negotiation/move", map[string]any{"move": move})
}

func (c *Client) Inbox(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/inbox", nil)
}

func (c *Client) ResolveInbox(ctx context.Context, itemID, choice string) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/inbox/"+url.PathEscape(itemID)+"/resolve", map[string]any{"choice": choice})
}

func (c *Client) PeekStage(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/queue/stage", nil)
}

func (c *Client) PopStage(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/queue/stage/pop", nil)
}

func (c *Client) DrainRatings(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodPost, "/v1/queue/ratings/drain", nil)
}

func (c *Client) RecipePreview(ctx context.Context, t game.Tags) (gjson.Result, error) {
	q := url.Values{}
	q.Set("archetype", t.Archetype)
	q.Set("narrative", t.Narrative)
	q.Set("chain", t.Chain)
	q.Set("audience", t.Audience)
	return c.Do(ctx, http.MethodGet, "/v1/recipes/preview?"+q.Encode(), nil)
}

func (c *Client) CashEstimate(ctx context.Context) (gjson.Result, error) {
	return c.Do(ctx, http.MethodGet, "/v1/cash/estimate", nil)
}

// StreamURL is the websocket address of the day stream.
func (c *Client) StreamURL() string {
	base := c.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/v1/stream"
}

// Do sends in as JSON and returns the parsed envelope. Non-2xx answers and
// {"ok":false} bodies become *APIError.
func (c *Client) Do(ctx context.Context, method, path string, in any) (gjson.Result, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return gjson.Result{}, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &APIError{Status: resp.StatusCode, Msg: strings.TrimSpace(string(raw))}
	}
	out := gjson.ParseBytes(raw)
	if resp.StatusCode >= 300 || !out.Get("ok").Bool() {
		msg := out.Get("msg").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return out, &APIError{Status: resp.StatusCode, Msg: msg}
	}
	return out, nil
}
