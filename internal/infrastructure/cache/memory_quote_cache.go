package cache

import (
	"context"
	"time"

	"carrier-rate-engine/internal/domain/shipping"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryQuoteCache is the in-process quote cache used when Redis is not configured.
type MemoryQuoteCache struct {
	store *gocache.Cache
}

func NewMemoryQuoteCache(defaultTTL, cleanupInterval time.Duration) *MemoryQuoteCache {
	return &MemoryQuoteCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryQuoteCache) Get(_ context.Context, key string) ([]shipping.RateQuote, bool, error) {
	value, found := c.store.Get(key)
	if !found {
		return nil, false, nil
	}
	quotes, ok := value.([]shipping.RateQuote)
	if !ok {
		return nil, false, nil
	}
	return append([]shipping.RateQuote(nil), quotes...), true, nil
}

func (c *MemoryQuoteCache) Set(_ context.Context, key string, quotes []shipping.RateQuote, ttl time.Duration) error {
	c.store.Set(key, append([]shipping.RateQuote(nil), quotes...), ttl)
	return nil
}

func (c *MemoryQuoteCache) Flush(_ context.Context) error {
	c.store.Flush()
	return nil
}

func (c *MemoryQuoteCache) Len() int {
	return c.store.ItemCount()
}
