// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory cacheutil.Store.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok
}

func (m *memStore) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = data
	return nil
}

func (m *memStore) Purge(context.Context, int) error { return nil }
func (m *memStore) String() string                   { return "mem" }

type fakeServer struct {
	*httptest.Server
	mu     sync.Mutex
	hits   map[string]int
	status map[string]string
	auth   string
}

func (f *fakeServer) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	diff, err := os.ReadFile("testdata/diff.json")
	require.NoError(t, err)

	f := &fakeServer{
		hits:   map[string]int{},
		status: map[string]string{"r1": "completed", "r2": "running"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"message":"API is healthy"}`))
	})
	mux.HandleFunc("GET /api/runs", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"runs":[{"id":"r1","thread_id":"t1","status":"completed","meta_data":{}},{"id":"r2","thread_id":"t2","status":"running","meta_data":{}}]}`))
	})
	mux.HandleFunc("GET /api/runs/diff", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("left") == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":[{"loc":["query","left"],"msg":"field required"}]}`))
			return
		}
		_, _ = w.Write(diff)
	})
	mux.HandleFunc("GET /api/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		status, ok := f.status[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"run not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"run":{"id":"` + id + `","thread_id":"t","status":"` + status + `"}}`))
	})
	mux.HandleFunc("GET /api/runs/{id}/spans", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"spans":[{"id":"s1","run_id":"` + r.PathValue("id") + `","kind":"node","name":"plan","start_ts":1.0,"fingerprint":"f","attrs":{}}]}`))
	})
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"runs":[]}`))
	})
	mux.HandleFunc("GET /secret", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"missing token"}`))
	})

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		f.auth = r.Header.Get("Authorization")
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func TestNewClientValidatesURL(t *testing.T) {
	for _, bad := range []string{"", "localhost:8000", "ftp://x", "http://"} {
		_, err := NewClient(bad)
		assert.Error(t, err, bad)
	}

	c, err := NewClient("http://localhost:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.String())
}

func TestClientReads(t *testing.T) {
	srv := newFakeServer(t)
	c, err := NewClient(srv.URL, WithToken("sekret"))
	require.NoError(t, err)
	ctx := context.Background()

	msg, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "API is healthy", msg)
	assert.Equal(t, "Bearer sekret", srv.auth)

	runs, err := c.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[1].ID)

	run, err := c.Run(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)

	spans, err := c.Spans(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "plan", spans[0].Name)

	res, err := c.Diff(ctx, "r1", "r2")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.Matched)

	raw, err := c.Fetch(ctx, RunsPath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"runs"`)
}

func TestClientErrors(t *testing.T) {
	srv := newFakeServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Run(ctx, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "run not found", apiErr.Detail)

	_, err = c.Fetch(ctx, "/secret")
	assert.ErrorIs(t, err, ErrUnauthorized)
	friendly := Friendly(err, "list runs", c.String())
	assert.Contains(t, friendly.Error(), "TRACEDIFF_TOKEN")
	assert.ErrorIs(t, friendly, ErrUnauthorized)

	_, err = c.Fetch(ctx, "/broken")
	assert.ErrorIs(t, err, ErrBadEnvelope)

	_, err = c.Diff(ctx, "", "r2")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail, "field required")
	assert.NotErrorIs(t, err, ErrRunNotFound)

	assert.NoError(t, Friendly(nil, "x", "y"))
}

func TestClientUnreachable(t *testing.T) {
	srv := newFakeServer(t)
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)
	_, err = c.Runs(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClientCachesFinishedDiffs(t *testing.T) {
	srv := newFakeServer(t)
	store := &memStore{}
	c, err := NewClient(srv.URL, WithCache(store))
	require.NoError(t, err)
	ctx := context.Background()

	for range 3 {
		_, err := c.Diff(ctx, "r1", "r2")
		require.NoError(t, err)
	}
	// The fixture reports both runs completed.
	assert.Equal(t, 1, srv.count("/api/runs/diff"))
	assert.Len(t, store.data, 1)
}

func TestClientCachesSpansOfFinishedRunsOnly(t *testing.T) {
	srv := newFakeServer(t)
	store := &memStore{}
	c, err := NewClient(srv.URL, WithCache(store))
	require.NoError(t, err)
	ctx := context.Background()

	for range 2 {
		_, err := c.Spans(ctx, "r1")
		require.NoError(t, err)
		_, err = c.Spans(ctx, "r2")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, srv.count("/api/runs/r1/spans"))
	assert.Equal(t, 2, srv.count("/api/runs/r2/spans"))

	_, err = c.Fetch(ctx, SpansPath("r1"))
	require.NoError(t, err)
	assert.Equal(t, 1, srv.count("/api/runs/r1/spans"))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/api/runs/a%2Fb/spans", SpansPath("a/b"))
	assert.Equal(t, "/api/runs/diff?left=x&right=y", DiffPath("x", "y"))
}
