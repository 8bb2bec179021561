package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultLookupCacheSize = 512
	defaultLookupCacheTTL  = 30 * time.Second
)

// CachedProductReader keeps recently resolved products in a bounded,
// expiring LRU. Only single-product lookups are cached; AllProducts always
// reads through so stock levels stay current for reorder decisions.
type CachedProductReader struct {
	inner ProductReader
	cache *expirable.LRU[string, domain.Product]
}

func NewCachedProductReader(inner ProductReader, size int, ttl time.Duration) *CachedProductReader {
	if size <= 0 {
		size = defaultLookupCacheSize
	}
	if ttl <= 0 {
		ttl = defaultLookupCacheTTL
	}
	return &CachedProductReader{
		inner: inner,
		cache: expirable.NewLRU[string, domain.Product](size, nil, ttl),
	}
}

func (r *CachedProductReader) ProductByID(ctx context.Context, id string) (domain.Product, error) {
	if product, ok := r.cache.Get(id); ok {
		return product, nil
	}

	product, err := r.inner.ProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	r.cache.Add(id, product)
	return product, nil
}

func (r *CachedProductReader) AllProducts(ctx context.Context) ([]domain.Product, error) {
	return r.inner.AllProducts(ctx)
}

// Purge drops every cached product.
func (r *CachedProductReader) Purge() {
	r.cache.Purge()
}

var _ ProductReader = (*CachedProductReader)(nil)
