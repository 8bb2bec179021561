package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReader struct {
	mu       sync.Mutex
	lookups  map[string]int
	products map[string]domain.Product
}

func (r *countingReader) ProductByID(ctx context.Context, id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookups == nil {
		r.lookups = make(map[string]int)
	}
	r.lookups[id]++
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (r *countingReader) AllProducts(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func TestCachedProductReaderServesRepeatLookupsFromCache(t *testing.T) {
	inner := &countingReader{products: map[string]domain.Product{"p1": {ID: "p1", Name: "Lipstick"}}}
	reader := NewCachedProductReader(inner, 8, time.Minute)

	for i := 0; i < 3; i++ {
		p, err := reader.ProductByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Lipstick", p.Name)
	}
	assert.Equal(t, 1, inner.lookups["p1"])

	reader.Purge()
	_, err := reader.ProductByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.lookups["p1"])
}

func TestCachedProductReaderDoesNotCacheMisses(t *testing.T) {
	inner := &countingReader{products: map[string]domain.Product{}}
	reader := NewCachedProductReader(inner, 0, 0)

	_, err := reader.ProductByID(context.Background(), "gone")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = reader.ProductByID(context.Background(), "gone")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 2, inner.lookups["gone"])
}
