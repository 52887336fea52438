// Package cache remembers which import items were already written so a
// re-run of the importer skips them.
package cache

import (
	"context"
	"time"
)

// MarkerStore records processed item hashes.
type MarkerStore interface {
	IsProcessed(ctx context.Context, hash string) (bool, error)
	MarkProcessed(ctx context.Context, hash string, ttl time.Duration) error
	ClearProcessed(ctx context.Context) error
	Close() error
}

var (
	_ MarkerStore = (*RedisClient)(nil)
	_ MarkerStore = (*MemoryStore)(nil)
)

// Open returns a Redis marker store for url, or an in-memory one when url is
// empty.
func Open(ctx context.Context, url, prefix string) (MarkerStore, error) {
	if url == "" {
		return NewMemoryStore(prefix), nil
	}
	return NewRedisClient(ctx, url, prefix)
}
