// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/log"
)

// Store caches immutable backend responses by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte) error
	// Purge drops entries older than hours. Stores with native expiry may
	// treat it as a no-op.
	Purge(ctx context.Context, hours int) error
	String() string
}

// DiskStore keeps entries as files beneath Dir()/<subdirs>.
type DiskStore struct {
	Subdirs []string
}

func (d DiskStore) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := Read(d.Subdirs, key)
	if !ok {
		return nil, false
	}
	return e.Data, true
}

func (d DiskStore) Set(_ context.Context, key string, data []byte) error {
	return Write(d.Subdirs, key, data)
}

func (d DiskStore) Purge(_ context.Context, hours int) error {
	return Purge(hours)
}

func (d DiskStore) String() string {
	base, _ := Dir()
	return "disk:" + filepath.Join(append([]string{base}, d.Subdirs...)...)
}

// NopStore caches nothing.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NopStore) Set(context.Context, string, []byte) error  { return nil }
func (NopStore) Purge(context.Context, int) error           { return nil }
func (NopStore) String() string                             { return "none" }

// RedisURL returns TRACEDIFF_REDIS_URL, else the cache.redis_url config
// value, else "".
func RedisURL() string {
	if u, ok := os.LookupEnv("TRACEDIFF_REDIS_URL"); ok && u != "" {
		return u
	}
	u, _ := config.GetString("cache.redis_url", "")
	return u
}

// Open selects the store: none when caching is disabled, Redis when a Redis
// URL is configured, disk otherwise. A Redis server that cannot be reached
// falls back to disk so a cache outage never blocks a diff.
func Open(ctx context.Context, subdirs ...string) Store {
	if !Enabled() {
		return NopStore{}
	}

	if u := RedisURL(); u != "" {
		hours, _ := config.GetInt("cache.clean", 0)
		rs, err := NewRedisStore(ctx, u, hours)
		if err == nil {
			log.Debugf("cache store: %s", rs)
			return rs
		}
		log.WithError(err).Warn("redis cache unavailable, using disk")
	}

	ds := DiskStore{Subdirs: subdirs}
	log.Debugf("cache store: %s", ds)
	return ds
}
