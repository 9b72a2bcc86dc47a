// Package cache wraps the Redis client used for read-through caching of
// patient records.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned by JSON.Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Client is the Redis client type used across the service.
type Client = redis.Client

// NewClient parses a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// JSON stores values as JSON documents under a key prefix.
type JSON struct {
	c      *redis.Client
	prefix string
	ttl    time.Duration
}

func NewJSON(c *redis.Client, prefix string, ttl time.Duration) *JSON {
	return &JSON{c: c, prefix: prefix, ttl: ttl}
}

func (j *JSON) key(k string) string { return j.prefix + k }

// Get decodes the cached value for k into dst.
func (j *JSON) Get(ctx context.Context, k string, dst any) error {
	raw, err := j.c.Get(ctx, j.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode cached %s: %w", k, err)
	}
	return nil
}

func (j *JSON) Set(ctx context.Context, k string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	return j.c.Set(ctx, j.key(k), raw, j.ttl).Err()
}

// SetNX stores v only when k is absent and reports whether it did.
func (j *JSON) SetNX(ctx context.Context, k string, v any) (bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", k, err)
	}
	return j.c.SetNX(ctx, j.key(k), raw, j.ttl).Result()
}

// casAttempts bounds the WATCH retries of SetUnless.
const casAttempts = 3

// SetUnless stores v unless keep reports that the current entry must
// stay. The check and the write run in one WATCH transaction; after
// repeated conflicts the entry is dropped instead.
func (j *JSON) SetUnless(ctx context.Context, k string, v any, keep func(cur []byte) bool) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	key := j.key(k)
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		case keep(cur):
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, j.ttl)
			return nil
		})
		return err
	}
	for i := 0; i < casAttempts; i++ {
		err = j.c.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return j.c.Del(ctx, key).Err()
}

func (j *JSON) Del(ctx context.Context, k string) error {
	return j.c.Del(ctx, j.key(k)).Err()
}
