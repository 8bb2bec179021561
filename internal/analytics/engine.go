package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/andresuchdata/stockpilot/backend-go/internal/repository"
)

// Engine answers analytics requests against the order and product stores.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	orders   repository.OrderReader
	products repository.ProductReader
	policy   *Policy
	cfg      Config
	now      func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the evaluation time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(orders repository.OrderReader, products repository.ProductReader, cfg Config, opts ...Option) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	e := &Engine{
		orders:   orders,
		products: products,
		policy:   NewPolicy(cfg),
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SalesAnalytics aggregates delivered orders within the requested range.
func (e *Engine) SalesAnalytics(ctx context.Context, q domain.SalesQuery) (*domain.SalesAnalyticsResult, error) {
	now := e.now()
	end := now
	if q.EndDate != nil {
		end = *q.EndDate
	}
	start := now.AddDate(0, 0, -e.cfg.SalesRangeDays)
	if q.StartDate != nil {
		start = *q.StartDate
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate %s is before startDate %s",
			domain.ErrValidation, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	orders, err := e.orders.OrdersInRange(ctx, start, end, domain.OrderStatusDelivered)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	top, err := TopProducts(ctx, orders, e.products, e.cfg.TopProductsLimit, e.cfg.LookupConcurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to rank top products: %w", err)
	}

	return &domain.SalesAnalyticsResult{
		SalesData:        AggregateSales(orders, NormalizeGroupBy(string(q.GroupBy)), e.cfg.Location),
		TopProducts:      top,
		CustomerSegments: SegmentCustomers(orders),
	}, nil
}

// InventoryAnalytics summarises current stock across all products.
func (e *Engine) InventoryAnalytics(ctx context.Context) (*domain.InventoryAnalyticsResult, error) {
	products, err := e.products.AllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	result := SummarizeInventory(products, e.now(), e.cfg.ExpiryWarningDays)
	return &result, nil
}

// ReorderRecommendations returns products at or below their reorder point,
// most urgent first.
func (e *Engine) ReorderRecommendations(ctx context.Context) ([]domain.StockRecommendation, error) {
	products, err := e.products.AllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	return RankRecommendations(products, e.policy, e.now()), nil
}

// Plan exposes the reorder plan of a single product.
func (e *Engine) Plan(product domain.Product) ReorderPlan {
	return e.policy.Evaluate(product, e.now())
}
