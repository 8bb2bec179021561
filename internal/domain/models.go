// backend-go/internal/domain/models.go
package domain

import "time"

// Customer identifies the buyer of an order.
type Customer struct {
	Name  string `json:"name" db:"customer_name"`
	Email string `json:"email" db:"customer_email"`
}

// OrderItem is a single ordered line.
type OrderItem struct {
	ProductID string  `json:"productId" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitPrice float64 `json:"unitPrice" db:"unit_price"`
	Subtotal  float64 `json:"subtotal" db:"subtotal"`
}

// Order is read-only to the analytics engine. TotalAmount is expected to
// equal the sum of item subtotals; the engine does not re-check it.
type Order struct {
	ID          string      `json:"id" db:"id"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	Status      OrderStatus `json:"status" db:"status"`
	Customer    Customer    `json:"customer"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount" db:"total_amount"`
}

// SaleRecord is one entry of a product's sales history.
type SaleRecord struct {
	Date     time.Time `json:"date" db:"sale_date"`
	Quantity int       `json:"quantity" db:"quantity"`
}

// Product is read-only to the analytics engine.
type Product struct {
	ID           string       `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	SKU          string       `json:"sku" db:"sku"`
	Category     string       `json:"category" db:"category"`
	Price        float64      `json:"price" db:"price"`
	Cost         float64      `json:"cost" db:"cost"`
	CurrentStock int          `json:"currentStock" db:"current_stock"`
	MinimumStock int          `json:"minimumStock" db:"minimum_stock"`
	MaximumStock int          `json:"maximumStock" db:"maximum_stock"`
	SalesHistory []SaleRecord `json:"salesHistory,omitempty"`
	ExpiryDate   *time.Time   `json:"expiryDate,omitempty" db:"expiry_date"`
}
