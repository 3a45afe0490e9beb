package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyPrefix = "pixelbuddy:idem"
	lockTTL                  = 5 * time.Minute
)

// IdempotencyStore keeps the response of a finished submission under its
// client-supplied key, plus a short-lived lock while one is in flight.
type IdempotencyStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewIdempotencyStore(rdb *goredis.Client, prefix string, ttl time.Duration) *IdempotencyStore {
	if prefix == "" {
		prefix = defaultIdempotencyPrefix
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *IdempotencyStore) respKey(key string) string { return s.prefix + ":" + key + ":resp" }
func (s *IdempotencyStore) lockKey(key string) string { return s.prefix + ":" + key + ":lock" }

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.rdb.Get(ctx, s.respKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return raw, true, nil
}

// Begin takes the in-flight lock. False means another request holds it.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.lockKey(key), "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency lock: %w", err)
	}
	return ok, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, response []byte) error {
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.respKey(key), response, s.ttl)
		p.Del(ctx, s.lockKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Abort(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.lockKey(key)).Err(); err != nil {
		return fmt.Errorf("idempotency abort: %w", err)
	}
	return nil
}
