package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs --no-cache runs and servers started
// without Redis, so every lookup is a miss and the pipeline legalizes anew.
//
// Like the Redis backend it reports a done context instead of answering.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	return nil, false, ctx.Err()
}

func (NullCache) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	return ctx.Err()
}

func (NullCache) Delete(ctx context.Context, _ string) error { return ctx.Err() }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
