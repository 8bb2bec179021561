package ingest

import (
	"errors"
	"io"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// ReadOrders parses one row per order line and folds rows sharing an
// order_id into a single order. Required columns: order_id, created_at,
// status, customer_email, product_id, quantity, unit_price. subtotal defaults
// to quantity * unit_price; the order total is the sum of subtotals.
func ReadOrders(r io.Reader, loc *time.Location) ([]domain.Order, error) {
	t, err := newTable(r, "order_id", "created_at", "status", "customer_email", "product_id", "quantity", "unit_price")
	if err != nil {
		return nil, err
	}

	var (
		orders []domain.Order
		totals []decimal.Decimal
		byID   = make(map[string]int)
	)

	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		orderID := rec.str("order_id")
		if orderID == "" {
			return nil, rec.errorf("order_id is required")
		}

		item, err := itemFromRow(rec)
		if err != nil {
			return nil, err
		}

		idx, seen := byID[orderID]
		if !seen {
			order, err := orderFromRow(rec, orderID, loc)
			if err != nil {
				return nil, err
			}
			idx = len(orders)
			byID[orderID] = idx
			orders = append(orders, order)
			totals = append(totals, decimal.Zero)
		}

		orders[idx].Items = append(orders[idx].Items, item)
		totals[idx] = totals[idx].Add(decimal.NewFromFloat(item.Subtotal))
	}

	for i := range orders {
		orders[i].TotalAmount = totals[i].Round(2).InexactFloat64()
	}
	return orders, nil
}

func orderFromRow(rec row, orderID string, loc *time.Location) (domain.Order, error) {
	createdAt, err := rec.time("created_at", loc)
	if err != nil {
		return domain.Order{}, err
	}
	if createdAt == nil {
		return domain.Order{}, rec.errorf("created_at is required")
	}

	status, ok := domain.ParseOrderStatus(rec.str("status"))
	if !ok {
		return domain.Order{}, rec.errorf("unknown status %q", rec.str("status"))
	}

	email := rec.str("customer_email")
	if email == "" {
		return domain.Order{}, rec.errorf("customer_email is required")
	}

	return domain.Order{
		ID:        orderID,
		CreatedAt: *createdAt,
		Status:    status,
		Customer:  domain.Customer{Name: rec.str("customer_name"), Email: email},
	}, nil
}

func itemFromRow(rec row) (domain.OrderItem, error) {
	item := domain.OrderItem{ProductID: rec.str("product_id")}
	if item.ProductID == "" {
		return item, rec.errorf("product_id is required")
	}

	var err error
	if item.Quantity, err = rec.int("quantity"); err != nil {
		return item, err
	}
	if item.UnitPrice, err = rec.float("unit_price"); err != nil {
		return item, err
	}

	if rec.str("subtotal") == "" {
		item.Subtotal = decimal.NewFromFloat(item.UnitPrice).
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Round(2).
			InexactFloat64()
		return item, nil
	}
	if item.Subtotal, err = rec.float("subtotal"); err != nil {
		return item, err
	}
	return item, nil
}
