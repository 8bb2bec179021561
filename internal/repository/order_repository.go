// backend-go/internal/repository/order_repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
)

// OrderReader fetches orders created within [start, end]. An empty status
// matches every status.
type OrderReader interface {
	OrdersInRange(ctx context.Context, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error)
}
