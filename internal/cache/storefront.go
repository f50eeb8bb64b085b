package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Storefront versions cached product responses per (kind, shop). Bumping the
// generation retires every cached response of that shop at once.
type Storefront struct {
	cache Cache
}

// NewStorefront wraps c. A nil c disables caching.
func NewStorefront(c Cache) *Storefront {
	return &Storefront{cache: c}
}

func generationKey(kind, shop string) string {
	return "gen:" + kind + ":" + strings.ToLower(shop)
}

// Invalidate bumps the generation of (kind, shop).
func (s *Storefront) Invalidate(ctx context.Context, kind, shop string) error {
	if s == nil || s.cache == nil {
		return nil
	}
	_, err := s.cache.Incr(ctx, generationKey(kind, shop))
	return err
}

// ResponseKey returns the key of a product response under the current generation.
func (s *Storefront) ResponseKey(ctx context.Context, kind, shop, productID string) (string, error) {
	gen := int64(0)
	if s != nil && s.cache != nil {
		var err error
		if gen, err = s.cache.Counter(ctx, generationKey(kind, shop)); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("resp:%s:%s:%d:%s", kind, strings.ToLower(shop), gen, productID), nil
}

// Get returns a cached response or ErrMiss.
func (s *Storefront) Get(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.cache == nil {
		return nil, ErrMiss
	}
	return s.cache.Get(ctx, key)
}

// Put stores a response for the given ttl.
func (s *Storefront) Put(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if s == nil || s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, body, ttl)
}
