package ingest

import (
	"errors"
	"io"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
)

// ReadProducts parses a product catalogue. Required columns: id, name, sku.
// Optional: category, price, cost, current_stock, minimum_stock,
// maximum_stock, expiry_date.
func ReadProducts(r io.Reader, loc *time.Location) ([]domain.Product, error) {
	t, err := newTable(r, "id", "name", "sku")
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		p, err := productFromRow(rec, loc)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func productFromRow(rec row, loc *time.Location) (domain.Product, error) {
	p := domain.Product{
		ID:       rec.str("id"),
		Name:     rec.str("name"),
		SKU:      rec.str("sku"),
		Category: rec.str("category"),
	}
	if p.ID == "" {
		return p, rec.errorf("id is required")
	}

	var err error
	if p.Price, err = rec.float("price"); err != nil {
		return p, err
	}
	if p.Cost, err = rec.float("cost"); err != nil {
		return p, err
	}
	if p.CurrentStock, err = rec.int("current_stock"); err != nil {
		return p, err
	}
	if p.MinimumStock, err = rec.int("minimum_stock"); err != nil {
		return p, err
	}
	if p.MaximumStock, err = rec.int("maximum_stock"); err != nil {
		return p, err
	}
	if p.ExpiryDate, err = rec.time("expiry_date", loc); err != nil {
		return p, err
	}

	if p.CurrentStock < 0 || p.MinimumStock < 0 || p.MaximumStock < 0 {
		return p, rec.errorf("stock levels of %s must not be negative", p.ID)
	}
	return p, nil
}

// ReadSales parses daily sales history rows: product_id, date, quantity.
func ReadSales(r io.Reader, loc *time.Location) (map[string][]domain.SaleRecord, error) {
	t, err := newTable(r, "product_id", "date", "quantity")
	if err != nil {
		return nil, err
	}

	history := make(map[string][]domain.SaleRecord)
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		productID := rec.str("product_id")
		if productID == "" {
			return nil, rec.errorf("product_id is required")
		}
		date, err := rec.time("date", loc)
		if err != nil {
			return nil, err
		}
		if date == nil {
			return nil, rec.errorf("date is required")
		}
		qty, err := rec.int("quantity")
		if err != nil {
			return nil, err
		}

		history[productID] = append(history[productID], domain.SaleRecord{Date: *date, Quantity: qty})
	}
	return history, nil
}
