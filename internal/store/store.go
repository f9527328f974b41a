package store

import (
	"context"
	"time"
)

// ZMember is one sorted-set member with its score.
type ZMember struct {
	Member string
	Score  float64
}

// Store is the key/value capability the stats subsystem runs on. The
// production implementation is Redis; tests substitute an in-memory
// double. Every method is a potentially-blocking store round trip and
// takes a context.
type Store interface {
	// Hashes
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]interface{}) error
	HSetNX(ctx context.Context, key, field string, value interface{}) (bool, error)
	HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error)
	HGet(ctx context.Context, key, field string) (string, error)

	// Keys
	Exists(ctx context.Context, key string) (bool, error)
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// Sorted sets
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZCard(ctx context.Context, key string) (int64, error)
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ZMember, error)

	// Plain values with TTL (name cache)
	Get(ctx context.Context, key string) (string, bool, error)
	SetEx(ctx context.Context, key string, value string, ttl time.Duration) error
}
