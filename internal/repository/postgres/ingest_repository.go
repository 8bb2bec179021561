package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
)

// IngestRepository writes seed data. Order writes share the transaction
// limit of the wrapped DB.
type IngestRepository struct {
	db *DB
}

func NewIngestRepository(db *DB) *IngestRepository {
	return &IngestRepository{db: db}
}

func (r *IngestRepository) UpsertProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			id, name, sku, category, price, cost,
			current_stock, minimum_stock, maximum_stock, expiry_date, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			sku = EXCLUDED.sku,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			cost = EXCLUDED.cost,
			current_stock = EXCLUDED.current_stock,
			minimum_stock = EXCLUDED.minimum_stock,
			maximum_stock = EXCLUDED.maximum_stock,
			expiry_date = EXCLUDED.expiry_date,
			updated_at = NOW()
	`
	var expiry sql.NullTime
	if product.ExpiryDate != nil {
		expiry = sql.NullTime{Time: *product.ExpiryDate, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.SKU,
		product.Category,
		product.Price,
		product.Cost,
		product.CurrentStock,
		product.MinimumStock,
		product.MaximumStock,
		expiry,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", product.ID, err)
	}
	return nil
}

func (r *IngestRepository) UpsertSale(ctx context.Context, productID string, sale domain.SaleRecord) error {
	query := `
		INSERT INTO product_sales (product_id, sale_date, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, sale_date)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`
	if _, err := r.db.ExecContext(ctx, query, productID, sale.Date, sale.Quantity); err != nil {
		return fmt.Errorf("failed to upsert sale for %s: %w", productID, err)
	}
	return nil
}

// UpsertOrder replaces an order and its items atomically.
func (r *IngestRepository) UpsertOrder(ctx context.Context, order *domain.Order) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		// 1. Order header
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, created_at, status, customer_name, customer_email, total_amount, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (id)
			DO UPDATE SET
				created_at = EXCLUDED.created_at,
				status = EXCLUDED.status,
				customer_name = EXCLUDED.customer_name,
				customer_email = EXCLUDED.customer_email,
				total_amount = EXCLUDED.total_amount,
				updated_at = NOW()
		`, order.ID, order.CreatedAt, string(order.Status), order.Customer.Name, order.Customer.Email, order.TotalAmount)
		if err != nil {
			return fmt.Errorf("failed to upsert order %s: %w", order.ID, err)
		}

		// 2. Replace items
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
			return fmt.Errorf("failed to clear items of order %s: %w", order.ID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, item := range order.Items {
			if _, err := stmt.ExecContext(ctx, order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal); err != nil {
				return fmt.Errorf("failed to insert item of order %s: %w", order.ID, err)
			}
		}
		return nil
	})
}
