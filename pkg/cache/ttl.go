package cache

import (
	"context"
	"time"
)

// WithTTL returns c with every Set using ttl instead of the caller's value.
// A zero ttl returns c unchanged. Clear and Len are forwarded when c
// supports them.
func WithTTL(c Cache, ttl time.Duration) Cache {
	if ttl <= 0 {
		return c
	}
	return &ttlCache{Cache: c, ttl: ttl}
}

type ttlCache struct {
	Cache
	ttl time.Duration
}

func (t *ttlCache) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return t.Cache.Set(ctx, key, data, t.ttl)
}

func (t *ttlCache) Clear(ctx context.Context) error {
	_, err := Clear(ctx, t.Cache)
	return err
}

func (t *ttlCache) Len() (int, error) {
	n, _, err := Len(t.Cache)
	return n, err
}
