package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/andresuchdata/stockpilot/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Customer segment thresholds are business constants.
const (
	highValueSpendThreshold = 1000
	regularOrderThreshold   = 3
)

type productTotals struct {
	productID string
	quantity  int
	revenue   decimal.Decimal
}

// rankProductSales folds line items by product and orders them by revenue,
// then product ID, keeping at most limit entries.
func rankProductSales(orders []domain.Order, limit int) []productTotals {
	byProduct := make(map[string]*productTotals)
	for _, order := range orders {
		for _, item := range order.Items {
			t, ok := byProduct[item.ProductID]
			if !ok {
				t = &productTotals{productID: item.ProductID, revenue: decimal.Zero}
				byProduct[item.ProductID] = t
			}
			t.quantity += item.Quantity
			t.revenue = t.revenue.Add(decimal.NewFromFloat(item.Subtotal))
		}
	}

	ranked := make([]productTotals, 0, len(byProduct))
	for _, t := range byProduct {
		ranked = append(ranked, *t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].revenue.Cmp(ranked[j].revenue); c != 0 {
			return c > 0
		}
		return ranked[i].productID < ranked[j].productID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// TopProducts ranks products by revenue and attaches display fields. Lookups
// run concurrently; products that no longer resolve are dropped, any other
// lookup failure aborts the call.
func TopProducts(ctx context.Context, orders []domain.Order, lookup repository.ProductLookup, limit, concurrency int) ([]domain.ProductSales, error) {
	ranked := rankProductSales(orders, limit)
	if len(ranked) == 0 {
		return []domain.ProductSales{}, nil
	}

	resolved := make([]*domain.ProductSales, len(ranked))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, entry := range ranked {
		g.Go(func() error {
			product, err := lookup.ProductByID(gctx, entry.productID)
			if errors.Is(err, domain.ErrNotFound) {
				log.Debug().Str("product_id", entry.productID).Msg("analytics: top product no longer exists, skipping")
				return nil
			}
			if err != nil {
				return fmt.Errorf("resolve product %s: %w", entry.productID, err)
			}
			resolved[i] = &domain.ProductSales{
				ProductID: entry.productID,
				Name:      product.Name,
				SKU:       product.SKU,
				Quantity:  entry.quantity,
				Revenue:   entry.revenue.InexactFloat64(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	top := make([]domain.ProductSales, 0, len(resolved))
	for _, r := range resolved {
		if r != nil {
			top = append(top, *r)
		}
	}
	return top, nil
}

// SegmentCustomers classifies customers (keyed by email) by spend and
// order frequency.
func SegmentCustomers(orders []domain.Order) domain.CustomerSegments {
	type acc struct {
		name   string
		spent  decimal.Decimal
		orders int
	}

	byEmail := make(map[string]*acc)
	for _, order := range orders {
		a, ok := byEmail[order.Customer.Email]
		if !ok {
			a = &acc{name: order.Customer.Name, spent: decimal.Zero}
			byEmail[order.Customer.Email] = a
		}
		a.spent = a.spent.Add(decimal.NewFromFloat(order.TotalAmount))
		a.orders++
	}

	segments := domain.CustomerSegments{
		HighValue:  []domain.CustomerSummary{},
		Regular:    []domain.CustomerSummary{},
		Occasional: []domain.CustomerSummary{},
	}
	threshold := decimal.NewFromInt(highValueSpendThreshold)
	for email, a := range byEmail {
		summary := domain.CustomerSummary{
			Customer:   email,
			Name:       a.name,
			TotalSpent: a.spent.InexactFloat64(),
			OrderCount: a.orders,
		}
		switch {
		case a.spent.GreaterThan(threshold):
			segments.HighValue = append(segments.HighValue, summary)
		case a.orders > regularOrderThreshold:
			segments.Regular = append(segments.Regular, summary)
		default:
			segments.Occasional = append(segments.Occasional, summary)
		}
	}

	sortCustomers(segments.HighValue)
	sortCustomers(segments.Regular)
	sortCustomers(segments.Occasional)
	return segments
}

func sortCustomers(list []domain.CustomerSummary) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].TotalSpent != list[j].TotalSpent {
			return list[i].TotalSpent > list[j].TotalSpent
		}
		return list[i].Customer < list[j].Customer
	})
}
