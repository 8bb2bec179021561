// backend-go/internal/repository/product_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
)

// ProductLookup resolves a single product. Missing products yield
// domain.ErrNotFound.
type ProductLookup interface {
	ProductByID(ctx context.Context, id string) (domain.Product, error)
}

type ProductReader interface {
	ProductLookup
	AllProducts(ctx context.Context) ([]domain.Product, error)
}
