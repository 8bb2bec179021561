// backend-go/internal/repository/postgres/product_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/andresuchdata/stockpilot/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const productColumns = `
	id, name, sku, category, price, cost,
	current_stock, minimum_stock, maximum_stock, expiry_date
`

type productRow struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	SKU          string       `db:"sku"`
	Category     string       `db:"category"`
	Price        float64      `db:"price"`
	Cost         float64      `db:"cost"`
	CurrentStock int          `db:"current_stock"`
	MinimumStock int          `db:"minimum_stock"`
	MaximumStock int          `db:"maximum_stock"`
	ExpiryDate   sql.NullTime `db:"expiry_date"`
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:           r.ID,
		Name:         r.Name,
		SKU:          r.SKU,
		Category:     r.Category,
		Price:        r.Price,
		Cost:         r.Cost,
		CurrentStock: r.CurrentStock,
		MinimumStock: r.MinimumStock,
		MaximumStock: r.MaximumStock,
	}
	if r.ExpiryDate.Valid {
		expiry := r.ExpiryDate.Time
		p.ExpiryDate = &expiry
	}
	return p
}

type saleRow struct {
	ProductID string    `db:"product_id"`
	SaleDate  time.Time `db:"sale_date"`
	Quantity  int       `db:"quantity"`
}

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

var _ repository.ProductReader = (*productRepository)(nil)

func (r *productRepository) AllProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`

	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]domain.Product, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
		ids[i] = row.ID
	}

	history, err := r.salesHistory(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].SalesHistory = history[products[i].ID]
	}

	return products, nil
}

func (r *productRepository) ProductByID(ctx context.Context, id string) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var row productRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("failed to get product %s: %w", id, err)
	}

	product := row.toDomain()
	history, err := r.salesHistory(ctx, []string{id})
	if err != nil {
		return domain.Product{}, err
	}
	product.SalesHistory = history[id]

	return product, nil
}

// salesHistory loads the history of every given product in one round trip.
func (r *productRepository) salesHistory(ctx context.Context, ids []string) (map[string][]domain.SaleRecord, error) {
	out := make(map[string][]domain.SaleRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT product_id, sale_date, quantity
		FROM product_sales
		WHERE product_id = ANY($1)
		ORDER BY product_id, sale_date
	`

	var rows []saleRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to load sales history: %w", err)
	}

	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], domain.SaleRecord{
			Date:     row.SaleDate,
			Quantity: row.Quantity,
		})
	}
	return out, nil
}
