// Package api is the client for the remote profile and score service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/valyala/fasthttp"

	"github.com/vovakirdan/catch-arcade/internal/config"
)

// Client talks to the profile/score service over JSON.
// It is safe for concurrent use; the base URL may change at runtime.
type Client struct {
	mu            sync.RWMutex
	baseURL       string
	updateMethod  string
	scoreEndpoint string
	timeout       time.Duration
	client        *fasthttp.Client
	logger        *log.Logger
}

// NewClient creates a client from the remote configuration.
// A nil logger discards request logs.
func NewClient(cfg config.RemoteConfig, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	method := strings.ToUpper(cfg.UpdateMethod)
	if method != fasthttp.MethodPut {
		method = fasthttp.MethodPatch
	}
	return &Client{
		baseURL:       normalizeBase(cfg.BaseURL),
		updateMethod:  method,
		scoreEndpoint: cfg.ScoreEndpoint,
		timeout:       timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		logger: logger,
	}
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL changes the service root. It must be an absolute http(s) URL.
func (c *Client) SetBaseURL(raw string) error {
	base := normalizeBase(raw)
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api: invalid base URL %q", raw)
	}
	c.mu.Lock()
	c.baseURL = base
	c.mu.Unlock()
	return nil
}

func (c *Client) ListProfiles(ctx context.Context) ([]Profile, error) {
	out, err := doRequest[[]Profile](ctx, c, fasthttp.MethodGet, "/api/perfiles", nil)
	if err != nil || out == nil {
		return nil, err
	}
	return *out, nil
}

func (c *Client) GetProfile(ctx context.Context, id ID) (*Profile, error) {
	p, err := doRequest[Profile](ctx, c, fasthttp.MethodGet, profilePath(id), nil)
	if err == nil && p == nil {
		return nil, fmt.Errorf("api: empty profile response for %s", id)
	}
	return p, err
}

func (c *Client) CreateProfile(ctx context.Context, in ProfileInput) (*Profile, error) {
	p, err := doRequest[Profile](ctx, c, fasthttp.MethodPost, "/api/perfiles", in)
	if err == nil && p == nil {
		return nil, fmt.Errorf("api: empty response creating profile")
	}
	return p, err
}

// UpdateProfile sends patch with the configured update method (PATCH or PUT).
// The returned profile is nil if the service answers without a body.
func (c *Client) UpdateProfile(ctx context.Context, id ID, patch ProfilePatch) (*Profile, error) {
	return doRequest[Profile](ctx, c, c.updateMethod, profilePath(id), patch)
}

// DeleteProfile removes a profile. Any 2xx, with or without a body, is success.
func (c *Client) DeleteProfile(ctx context.Context, id ID) error {
	_, err := c.roundTrip(ctx, fasthttp.MethodDelete, profilePath(id), nil)
	return err
}

// Leaderboard returns the ranking in service order, numbered from 1.
func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	out, err := doRequest[[]LeaderboardEntry](ctx, c, fasthttp.MethodGet, "/api/leaderboard", nil)
	if err != nil || out == nil {
		return nil, err
	}
	return lo.Map(*out, func(e LeaderboardEntry, i int) LeaderboardEntry {
		e.Rank = i + 1
		return e
	}), nil
}

// History returns the recorded matches of a profile.
func (c *Client) History(ctx context.Context, id ID) ([]HistoryItem, error) {
	out, err := doRequest[[]HistoryItem](ctx, c, fasthttp.MethodGet, "/api/scores/"+url.PathEscape(string(id)), nil)
	if err != nil || out == nil {
		return nil, err
	}
	return *out, nil
}

// PostMatch reports a finished match for a profile and returns the updated
// profile when the service sends one.
func (c *Client) PostMatch(ctx context.Context, id ID, m MatchPost) (*Profile, error) {
	path := profilePath(id) + "/partidas"
	if c.scoreEndpoint == config.ScoreEndpointScores {
		path = "/api/scores/" + url.PathEscape(string(id))
	}
	return doRequest[Profile](ctx, c, fasthttp.MethodPost, path, m)
}

func profilePath(id ID) string {
	return "/api/perfiles/" + url.PathEscape(string(id))
}

func normalizeBase(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// doRequest performs one JSON round trip. A 2xx with an empty body yields
// (nil, nil).
func doRequest[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	respBody, err := c.roundTrip(ctx, method, path, body)
	if err != nil || len(respBody) == 0 {
		return nil, err
	}
	var result T
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return &result, nil
}

// roundTrip sends one request and returns the trimmed body of a 2xx answer.
func (c *Client) roundTrip(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.BaseURL() + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		req.SetBodyRaw(payload)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	c.logger.Debug("request", "method", method, "path", path, "status", status, "duration", time.Since(start))

	// resp is released on return
	respBody := append([]byte(nil), bytes.TrimSpace(resp.Body())...)
	if status < 200 || status >= 300 {
		return nil, &StatusError{Code: status, Body: string(respBody)}
	}
	return respBody, nil
}
