// backend-go/internal/repository/postgres/order_repository.go
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/andresuchdata/stockpilot/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type orderRow struct {
	ID            string    `db:"id"`
	CreatedAt     time.Time `db:"created_at"`
	Status        string    `db:"status"`
	CustomerName  string    `db:"customer_name"`
	CustomerEmail string    `db:"customer_email"`
	TotalAmount   float64   `db:"total_amount"`
}

type orderItemRow struct {
	OrderID   string  `db:"order_id"`
	ProductID string  `db:"product_id"`
	Quantity  int     `db:"quantity"`
	UnitPrice float64 `db:"unit_price"`
	Subtotal  float64 `db:"subtotal"`
}

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *orderRepository {
	return &orderRepository{db: db}
}

var _ repository.OrderReader = (*orderRepository)(nil)

func (r *orderRepository) OrdersInRange(ctx context.Context, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	conditions := []string{"created_at >= $1", "created_at <= $2"}
	args := []interface{}{start, end}
	if status != "" {
		args = append(args, string(status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT id, created_at, status, customer_name, customer_email, total_amount
		FROM orders
		WHERE %s
		ORDER BY created_at, id
	`, strings.Join(conditions, " AND "))

	var rows []orderRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(rows) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, len(rows))
	for i, row := range rows {
		orders[i] = domain.Order{
			ID:          row.ID,
			CreatedAt:   row.CreatedAt,
			Status:      domain.OrderStatus(row.Status),
			Customer:    domain.Customer{Name: row.CustomerName, Email: row.CustomerEmail},
			Items:       items[row.ID],
			TotalAmount: row.TotalAmount,
		}
	}
	return orders, nil
}

func (r *orderRepository) itemsFor(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	query := `
		SELECT order_id, product_id, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`

	var rows []orderItemRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, pq.Array(orderIDs)); err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	out := make(map[string][]domain.OrderItem, len(orderIDs))
	for _, row := range rows {
		out[row.OrderID] = append(out[row.OrderID], domain.OrderItem{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			Subtotal:  row.Subtotal,
		})
	}
	return out, nil
}
