// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tfctl/tracediff/internal/log"
)

// DefaultRedisTTL applies when cache.clean is not set.
const DefaultRedisTTL = 24 * time.Hour

// RedisStore keeps entries in Redis under the "tracediff:" prefix. Entries
// expire after the TTL, so Purge does nothing.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to redisURL. ttlHours <= 0 selects DefaultRedisTTL.
func NewRedisStore(ctx context.Context, redisURL string, ttlHours int) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second) //nolint:mnd
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttlHours), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttlHours int) *RedisStore {
	ttl := DefaultRedisTTL
	if ttlHours > 0 {
		ttl = time.Duration(ttlHours) * time.Hour
	}
	return &RedisStore{client: client, prefix: "tracediff:", ttl: ttl}
}

// key mirrors the disk layout, e.g. tracediff:runs:r1:<hash>.json.
func (s *RedisStore) key(clearKey string) string {
	return s.prefix + strings.Join(Resource(clearKey), ":") + ":" + encodeKey(clearKey)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.WithError(err).Warnf("redis cache read failed: key=%s", key)
		return nil, false
	}
	log.Debugf("cache hit: key=%s", key)
	return b, true
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis cache write: %w", err)
	}
	log.Debugf("cache write: key=%s", key)
	return nil
}

func (s *RedisStore) Purge(context.Context, int) error {
	return nil
}

func (s *RedisStore) String() string {
	return "redis:" + s.client.Options().Addr
}

// Close releases the connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
