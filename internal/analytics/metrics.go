package analytics

import (
	"sort"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

type bucketTotals struct {
	sales  decimal.Decimal
	orders int
}

// AggregateSales reduces orders into totals and a per-period series. Dates
// are bucketed in loc (UTC when nil).
func AggregateSales(orders []domain.Order, groupBy domain.GroupBy, loc *time.Location) domain.SalesMetrics {
	if loc == nil {
		loc = time.UTC
	}

	total := decimal.Zero
	buckets := make(map[string]*bucketTotals)

	for _, order := range orders {
		amount := decimal.NewFromFloat(order.TotalAmount)
		total = total.Add(amount)

		key := BucketKey(order.CreatedAt.In(loc), groupBy)
		b, ok := buckets[key]
		if !ok {
			b = &bucketTotals{sales: decimal.Zero}
			buckets[key] = b
		}
		b.sales = b.sales.Add(amount)
		b.orders++
	}

	metrics := domain.SalesMetrics{
		TotalSales:   total.InexactFloat64(),
		TotalOrders:  len(orders),
		GroupedSales: make([]domain.PeriodSales, 0, len(buckets)),
	}
	if len(orders) > 0 {
		metrics.AverageOrderValue = total.Div(decimal.NewFromInt(int64(len(orders)))).InexactFloat64()
	}

	for key, b := range buckets {
		metrics.GroupedSales = append(metrics.GroupedSales, domain.PeriodSales{
			Period: key,
			Sales:  b.sales.InexactFloat64(),
			Orders: b.orders,
		})
	}
	// ISO dates and YYYY-MM sort chronologically as strings.
	sort.Slice(metrics.GroupedSales, func(i, j int) bool {
		return metrics.GroupedSales[i].Period < metrics.GroupedSales[j].Period
	})

	return metrics
}

// BucketKey returns the period key of t. Weeks start on Sunday. Unknown
// groupings fall back to daily buckets.
func BucketKey(t time.Time, groupBy domain.GroupBy) string {
	switch groupBy {
	case domain.GroupByWeek:
		start := t.AddDate(0, 0, -int(t.Weekday()))
		return start.Format("2006-01-02")
	case domain.GroupByMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// NormalizeGroupBy maps free-form input onto a supported grouping.
func NormalizeGroupBy(raw string) domain.GroupBy {
	switch domain.GroupBy(raw) {
	case domain.GroupByWeek, domain.GroupByMonth:
		return domain.GroupBy(raw)
	default:
		return domain.GroupByDay
	}
}
