// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/cacheutil"
	"github.com/tfctl/tracediff/internal/log"
)

// DefaultServer is used when neither --server nor the config names one.
const DefaultServer = "http://localhost:8000"

// Backend is what commands need from the trace backend.
type Backend interface {
	Health(ctx context.Context) (string, error)
	Runs(ctx context.Context) ([]Run, error)
	Run(ctx context.Context, id string) (Run, error)
	Spans(ctx context.Context, runID string) ([]Span, error)
	Diff(ctx context.Context, left, right string) (*DiffResult, error)
	// Fetch returns the raw envelope at path, for --output raw and the
	// tabular listings.
	Fetch(ctx context.Context, path string) ([]byte, error)
	String() string
}

// NewBackend builds a Client from the --server flag, TRACEDIFF_TOKEN and the
// configured cache store. Responses are cached per server host.
func NewBackend(ctx context.Context, cmd *cli.Command) (*Client, error) {
	server := cmd.String("server")
	if server == "" {
		server = DefaultServer
	}

	if _, err := url.Parse(server); err != nil {
		return nil, fmt.Errorf("invalid server %q: %w", server, err)
	}

	store := cacheutil.Open(ctx, cacheutil.ServerDir(server))
	opts := []Option{WithCache(store)}
	if token, ok := os.LookupEnv("TRACEDIFF_TOKEN"); ok && token != "" {
		opts = append(opts, WithToken(token))
	}

	c, err := NewClient(server, opts...)
	if err != nil {
		return nil, err
	}
	log.Debugf("NewBackend: server=%s cache=%s", c, store)
	return c, nil
}
