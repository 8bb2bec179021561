package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/config"
	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rangeCall struct {
	start, end time.Time
	status     domain.OrderStatus
}

type fakeOrders struct {
	orders []domain.Order
	err    error
	calls  []rangeCall
}

func (f *fakeOrders) OrdersInRange(_ context.Context, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	f.calls = append(f.calls, rangeCall{start: start, end: end, status: status})
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

type fakeProducts struct {
	fakeLookup
	all []domain.Product
	err error
}

func (f *fakeProducts) AllProducts(context.Context) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.all, nil
}

func fixedClock() time.Time { return evalNow }

func newTestEngine(orders *fakeOrders, products *fakeProducts) *Engine {
	return NewEngine(orders, products, DefaultConfig(), WithClock(fixedClock))
}

func TestEngineSalesAnalytics(t *testing.T) {
	orders := &fakeOrders{orders: []domain.Order{
		{ID: "o1", CreatedAt: day(2024, 1, 1), Status: domain.OrderStatusDelivered, TotalAmount: 100,
			Customer: domain.Customer{Email: "a@example.com", Name: "A"},
			Items:    []domain.OrderItem{item("p1", 2, 100)}},
		{ID: "o2", CreatedAt: day(2024, 1, 2), Status: domain.OrderStatusDelivered, TotalAmount: 200,
			Customer: domain.Customer{Email: "a@example.com", Name: "A"},
			Items:    []domain.OrderItem{item("p2", 1, 200)}},
	}}
	products := &fakeProducts{fakeLookup: fakeLookup{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "One"},
		"p2": {ID: "p2", Name: "Two"},
	}}}

	start, end := day(2024, 1, 1), day(2024, 1, 31)
	result, err := newTestEngine(orders, products).SalesAnalytics(context.Background(), domain.SalesQuery{
		StartDate: &start,
		EndDate:   &end,
		GroupBy:   domain.GroupByDay,
	})
	require.NoError(t, err)

	assert.Equal(t, 300.0, result.SalesData.TotalSales)
	assert.Equal(t, 2, result.SalesData.TotalOrders)
	assert.Equal(t, 150.0, result.SalesData.AverageOrderValue)
	assert.Len(t, result.SalesData.GroupedSales, 2)
	require.Len(t, result.TopProducts, 2)
	assert.Equal(t, "p2", result.TopProducts[0].ProductID)
	assert.Len(t, result.CustomerSegments.Occasional, 1)

	require.Len(t, orders.calls, 1)
	assert.Equal(t, rangeCall{start: start, end: end, status: domain.OrderStatusDelivered}, orders.calls[0])
}

func TestEngineSalesAnalyticsDefaultRange(t *testing.T) {
	orders := &fakeOrders{}
	result, err := newTestEngine(orders, &fakeProducts{}).SalesAnalytics(context.Background(), domain.SalesQuery{})
	require.NoError(t, err)

	assert.Zero(t, result.SalesData.TotalOrders)
	assert.Empty(t, result.TopProducts)
	require.Len(t, orders.calls, 1)
	assert.Equal(t, evalNow.AddDate(0, 0, -30), orders.calls[0].start)
	assert.Equal(t, evalNow, orders.calls[0].end)
}

func TestEngineSalesDefaultRangeIgnoresDemandWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DemandWindowDays = 60
	orders := &fakeOrders{}

	_, err := NewEngine(orders, &fakeProducts{}, cfg, WithClock(fixedClock)).SalesAnalytics(context.Background(), domain.SalesQuery{})
	require.NoError(t, err)
	require.Len(t, orders.calls, 1)
	assert.Equal(t, evalNow.AddDate(0, 0, -30), orders.calls[0].start)

	cfg.SalesRangeDays = 7
	orders = &fakeOrders{}
	_, err = NewEngine(orders, &fakeProducts{}, cfg, WithClock(fixedClock)).SalesAnalytics(context.Background(), domain.SalesQuery{})
	require.NoError(t, err)
	assert.Equal(t, evalNow.AddDate(0, 0, -7), orders.calls[0].start)
}

func TestEngineSalesAnalyticsRejectsInvertedRange(t *testing.T) {
	orders := &fakeOrders{}
	start, end := day(2024, 2, 1), day(2024, 1, 1)

	_, err := newTestEngine(orders, &fakeProducts{}).SalesAnalytics(context.Background(), domain.SalesQuery{
		StartDate: &start,
		EndDate:   &end,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, orders.calls)
}

func TestEngineSalesAnalyticsPropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	_, err := newTestEngine(&fakeOrders{err: boom}, &fakeProducts{}).SalesAnalytics(context.Background(), domain.SalesQuery{})
	assert.ErrorIs(t, err, boom)
}

func TestEngineInventoryAnalyticsEmpty(t *testing.T) {
	result, err := newTestEngine(&fakeOrders{}, &fakeProducts{}).InventoryAnalytics(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.InventoryMetrics.TotalProducts)
	assert.Zero(t, result.InventoryMetrics.TotalValue)
	assert.Equal(t, domain.StockDistribution{}, result.StockDistribution)
	assert.Empty(t, result.CategoryDistribution)
}

func TestEngineReorderRecommendations(t *testing.T) {
	products := &fakeProducts{all: []domain.Product{criticalProduct()}}

	recs, err := newTestEngine(&fakeOrders{}, products).ReorderRecommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, "p1", recs[0].Product.ID)
	assert.Equal(t, 21, recs[0].ReorderPoint)
	assert.Equal(t, 39, recs[0].RecommendedQuantity)
	assert.Equal(t, domain.UrgencyCritical, recs[0].Urgency)
}

func TestEngineReorderRecommendationsPropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	_, err := newTestEngine(&fakeOrders{}, &fakeProducts{err: boom}).ReorderRecommendations(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestEnginePlanUsesClock(t *testing.T) {
	plan := newTestEngine(&fakeOrders{}, &fakeProducts{}).Plan(criticalProduct())
	assert.Equal(t, 1.0, plan.AverageDailyDemand)

	later := NewEngine(&fakeOrders{}, &fakeProducts{}, DefaultConfig(), WithClock(func() time.Time {
		return evalNow.AddDate(0, 2, 0)
	}))
	assert.Zero(t, later.Plan(criticalProduct()).AverageDailyDemand)
}

func TestConfigFromKeepsDefaults(t *testing.T) {
	cfg := ConfigFrom(config.AnalyticsConfig{SafetyStockDays: 21})

	assert.Equal(t, 7.0, cfg.LeadTimeDays)
	assert.Equal(t, 21.0, cfg.SafetyStockDays)
	assert.Equal(t, 30, cfg.DemandWindowDays)
	assert.Equal(t, 30, cfg.SalesRangeDays)
	assert.Equal(t, time.UTC, cfg.Location)
}
