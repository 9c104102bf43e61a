// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rs, err := NewRedisStore(context.Background(), "redis://"+s.Addr(), 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rs.Close() })
	return rs, s
}

func TestRedisStore(t *testing.T) {
	rs, s := setupRedis(t)
	ctx := context.Background()

	_, ok := rs.Get(ctx, "/api/runs/diff?left=a&right=b")
	assert.False(t, ok)

	require.NoError(t, rs.Set(ctx, "/api/runs/diff?left=a&right=b", []byte(`{"ok":true}`)))

	got, ok := rs.Get(ctx, "/api/runs/diff?left=a&right=b")
	require.True(t, ok)
	assert.Equal(t, `{"ok":true}`, string(got))

	keys := s.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "tracediff:"))
	assert.Equal(t, time.Hour, s.TTL(keys[0]))

	s.FastForward(2 * time.Hour)
	_, ok = rs.Get(ctx, "/api/runs/diff?left=a&right=b")
	assert.False(t, ok)

	assert.NoError(t, rs.Purge(ctx, 1))
	assert.Equal(t, "redis:"+s.Addr(), rs.String())
}

func TestRedisStoreDefaultTTL(t *testing.T) {
	s := miniredis.RunT(t)
	rs, err := NewRedisStore(context.Background(), "redis://"+s.Addr(), 0)
	require.NoError(t, err)
	defer rs.Close()

	require.NoError(t, rs.Set(context.Background(), "k", []byte("v")))
	assert.Equal(t, DefaultRedisTTL, s.TTL("tracediff:other:"+encodeKey("k")))

	spans := "http://localhost:8000/api/runs/r1/spans"
	require.NoError(t, rs.Set(context.Background(), spans, []byte("v")))
	assert.True(t, s.Exists("tracediff:runs:r1:"+encodeKey(spans)))
}

func TestNewRedisStoreErrors(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url", 0)
	assert.Error(t, err)

	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()
	_, err = NewRedisStore(context.Background(), "redis://"+addr, 0)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		t.Setenv("TRACEDIFF_CACHE", "0")
		t.Setenv("TRACEDIFF_REDIS_URL", "")
		assert.IsType(t, NopStore{}, Open(ctx))
	})

	t.Run("disk", func(t *testing.T) {
		withCacheDir(t)
		t.Setenv("TRACEDIFF_REDIS_URL", "")
		st := Open(ctx, "host")
		require.IsType(t, DiskStore{}, st)

		require.NoError(t, st.Set(ctx, "k", []byte("v")))
		got, ok := st.Get(ctx, "k")
		require.True(t, ok)
		assert.Equal(t, "v", string(got))
		assert.True(t, strings.HasPrefix(st.String(), "disk:"))
	})

	t.Run("redis", func(t *testing.T) {
		withCacheDir(t)
		s := miniredis.RunT(t)
		t.Setenv("TRACEDIFF_REDIS_URL", "redis://"+s.Addr())
		st := Open(ctx)
		require.IsType(t, &RedisStore{}, st)
		_ = st.(*RedisStore).Close()
	})

	t.Run("redis down falls back to disk", func(t *testing.T) {
		withCacheDir(t)
		s := miniredis.RunT(t)
		addr := s.Addr()
		s.Close()
		t.Setenv("TRACEDIFF_REDIS_URL", "redis://"+addr)
		assert.IsType(t, DiskStore{}, Open(ctx))
	})
}

func TestNopStore(t *testing.T) {
	var st Store = NopStore{}
	require.NoError(t, st.Set(context.Background(), "k", []byte("v")))
	_, ok := st.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Equal(t, "none", st.String())
}
