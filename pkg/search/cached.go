package search

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached wraps a provider with an in-memory TTL cache so repeated strategy
// phrasings within a process don't hit the upstream API again.
type Cached struct {
	inner Provider
	cache *cache.Cache
}

var _ Provider = &Cached{}

// NewCached wraps inner with a cache holding results for ttl.
func NewCached(inner Provider, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Cached{
		inner: inner,
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (c *Cached) Search(ctx context.Context, query string) ([]Result, error) {
	if x, found := c.cache.Get(query); found {
		return x.([]Result), nil
	}

	results, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	c.cache.Set(query, results, cache.DefaultExpiration)
	return results, nil
}
