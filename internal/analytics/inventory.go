package analytics

import (
	"sort"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Stock level bands, checked in this order; the first match wins.
type StockLevel string

const (
	StockOverstocked StockLevel = "overstocked"
	StockOptimal     StockLevel = "optimal"
	StockLow         StockLevel = "low"
	StockCritical    StockLevel = "critical"
)

// ClassifyStockLevel places a product in the first matching band:
// overstocked above 80% of maximum, optimal between minimum and 80% of
// maximum, low between minimum and 150% of minimum, critical at or below
// minimum.
func ClassifyStockLevel(p domain.Product) StockLevel {
	stock := float64(p.CurrentStock)
	minStock := float64(p.MinimumStock)
	maxStock := float64(p.MaximumStock)

	switch {
	case stock > 0.8*maxStock:
		return StockOverstocked
	case stock > minStock && stock <= 0.8*maxStock:
		return StockOptimal
	case stock > minStock && stock <= 1.5*minStock:
		return StockLow
	default:
		return StockCritical
	}
}

// SummarizeInventory computes the inventory counters, stock band
// distribution and category shares of a product set.
func SummarizeInventory(products []domain.Product, now time.Time, expiryWarningDays int) domain.InventoryAnalyticsResult {
	result := domain.InventoryAnalyticsResult{
		CategoryDistribution: []domain.CategoryShare{},
	}

	expiryCutoff := now.AddDate(0, 0, expiryWarningDays)
	value := decimal.Zero
	categories := make(map[string]int)

	for _, p := range products {
		value = value.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.CurrentStock))))

		if p.CurrentStock <= p.MinimumStock {
			result.InventoryMetrics.LowStock++
		}
		if p.CurrentStock == 0 {
			result.InventoryMetrics.OutOfStock++
		}
		if p.ExpiryDate != nil && !p.ExpiryDate.Before(now) && !p.ExpiryDate.After(expiryCutoff) {
			result.InventoryMetrics.ExpiringSoon++
		}

		switch ClassifyStockLevel(p) {
		case StockOverstocked:
			result.StockDistribution.Overstocked++
		case StockOptimal:
			result.StockDistribution.Optimal++
		case StockLow:
			result.StockDistribution.Low++
		case StockCritical:
			result.StockDistribution.Critical++
		}

		categories[p.Category]++
	}

	result.InventoryMetrics.TotalProducts = len(products)
	result.InventoryMetrics.TotalValue = value.InexactFloat64()

	if len(products) == 0 {
		return result
	}

	total := decimal.NewFromInt(int64(len(products)))
	hundred := decimal.NewFromInt(100)
	for category, count := range categories {
		pct := decimal.NewFromInt(int64(count)).Div(total).Mul(hundred).Round(2)
		result.CategoryDistribution = append(result.CategoryDistribution, domain.CategoryShare{
			Category:   category,
			Count:      count,
			Percentage: pct.InexactFloat64(),
		})
	}
	sort.Slice(result.CategoryDistribution, func(i, j int) bool {
		a, b := result.CategoryDistribution[i], result.CategoryDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})

	return result
}
