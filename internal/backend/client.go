// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/tfctl/tracediff/internal/cacheutil"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/version"
)

// Client talks to one trace backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   cacheutil.Store
	purge   sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends "Authorization: Bearer <token>".
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default client, which times out after 30s.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache caches immutable responses in store.
func WithCache(store cacheutil.Store) Option {
	return func(c *Client) { c.cache = store }
}

// NewClient returns a client for the backend at baseURL, e.g.
// http://localhost:8000.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server %q: want http(s)://host[:port]", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second}, //nolint:mnd
		cache:   cacheutil.NopStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) String() string {
	return c.baseURL
}

// Health returns the backend's health message.
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.hit(ctx, "/healthz", nil)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "message").String(), nil
}

// Runs lists every run.
func (c *Client) Runs(ctx context.Context) ([]Run, error) {
	var env struct {
		Runs []Run `json:"runs"`
	}
	if err := c.getJSON(ctx, RunsPath(), nil, &env); err != nil {
		return nil, err
	}
	return env.Runs, nil
}

// Run fetches one run.
func (c *Client) Run(ctx context.Context, id string) (Run, error) {
	var env struct {
		Run Run `json:"run"`
	}
	if err := c.getJSON(ctx, RunPath(id), nil, &env); err != nil {
		return Run{}, err
	}
	return env.Run, nil
}

// Spans lists the spans of a run in recording order.
func (c *Client) Spans(ctx context.Context, runID string) ([]Span, error) {
	var env struct {
		Spans []Span `json:"spans"`
	}
	if err := c.getJSON(ctx, SpansPath(runID), c.runFinal(runID), &env); err != nil {
		return nil, err
	}
	return env.Spans, nil
}

// Diff fetches the diff of two runs. It is cached once both runs finished.
func (c *Client) Diff(ctx context.Context, left, right string) (*DiffResult, error) {
	var res DiffResult
	if err := c.getJSON(ctx, DiffPath(left, right), diffFinal, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Fetch returns the raw envelope at path. Only runs and health are fetched
// uncached; spans and diffs follow the same rules as Spans and Diff.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	var cacheable func(context.Context, []byte) bool
	switch {
	case strings.HasPrefix(path, "/api/runs/diff"):
		cacheable = diffFinal
	case strings.HasSuffix(path, "/spans"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/runs/"), "/spans")
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
		cacheable = c.runFinal(id)
	}
	return c.hit(ctx, path, cacheable)
}

// RunsPath is the path of the run listing.
func RunsPath() string { return "/api/runs" }

// RunPath is the path of one run.
func RunPath(id string) string { return "/api/runs/" + url.PathEscape(id) }

// SpansPath is the path of a run's spans.
func SpansPath(id string) string { return RunPath(id) + "/spans" }

// DiffPath is the path of the diff of two runs.
func DiffPath(left, right string) string {
	q := url.Values{"left": {left}, "right": {right}}
	return "/api/runs/diff?" + q.Encode()
}

func (c *Client) getJSON(ctx context.Context, path string, cacheable func(context.Context, []byte) bool, v any) error {
	body, err := c.hit(ctx, path, cacheable)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// runFinal decides, after a cache miss, whether a run's spans may be cached.
func (c *Client) runFinal(id string) func(context.Context, []byte) bool {
	return func(ctx context.Context, _ []byte) bool {
		run, err := c.Run(ctx, id)
		if err != nil {
			log.WithError(err).Debugf("not caching spans of %s", id)
			return false
		}
		return run.Final()
	}
}

func diffFinal(_ context.Context, body []byte) bool {
	final := func(status string) bool {
		return status == StatusCompleted || status == StatusFailed
	}
	return final(gjson.GetBytes(body, "left_run.status").String()) &&
		final(gjson.GetBytes(body, "right_run.status").String())
}

// hit GETs path. Cached entries are served first; a fresh body is written to
// the cache only when cacheable approves it. Entries are only ever written
// for immutable resources, so a hit needs no revalidation.
func (c *Client) hit(ctx context.Context, path string, cacheable func(context.Context, []byte) bool) ([]byte, error) {
	target := c.baseURL + path

	if cacheable != nil {
		c.purge.Do(func() {
			hours, _ := config.GetInt("cache.clean", 0)
			if err := c.cache.Purge(ctx, hours); err != nil {
				log.WithError(err).Warn("failed to purge cache")
			}
		})
		if data, ok := c.cache.Get(ctx, target); ok {
			log.Debugf("cache hit: %s", target)
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log.Debugf("GET %s", target)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	body := doc.Bytes()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(http.MethodGet, target, resp.StatusCode, body)
	}
	if !gjson.GetBytes(body, "ok").Bool() {
		return nil, fmt.Errorf("GET %s: %w", target, ErrBadEnvelope)
	}

	if cacheable != nil && cacheable(ctx, body) {
		if err := c.cache.Set(ctx, target, body); err != nil {
			log.WithError(err).Warn("failed to write response to cache")
		}
	}
	return body, nil
}
