package analytics

import (
	"sort"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
)

const (
	reasonCritical    = "Critical stock level - immediate action required"
	reasonApproaching = "Stock approaching reorder point"
	reasonRegular     = "Regular reorder recommendation"
)

// ClassifyUrgency maps the stock-to-reorder-point ratio onto an urgency
// band. A zero reorder point is always critical.
func ClassifyUrgency(currentStock, reorderPoint int) (domain.Urgency, string) {
	if reorderPoint <= 0 {
		return domain.UrgencyCritical, reasonCritical
	}

	ratio := float64(currentStock) / float64(reorderPoint)
	switch {
	case ratio <= 0.5:
		return domain.UrgencyCritical, reasonCritical
	case ratio <= 0.75:
		return domain.UrgencyApproaching, reasonApproaching
	default:
		return domain.UrgencyRegular, reasonRegular
	}
}

// RankRecommendations evaluates every product and returns recommendations
// for those at or below their reorder point, most urgent first. Products of
// equal urgency keep their input order.
func RankRecommendations(products []domain.Product, policy *Policy, now time.Time) []domain.StockRecommendation {
	recommendations := make([]domain.StockRecommendation, 0)
	for _, product := range products {
		plan := policy.Evaluate(product, now)
		if !plan.NeedsReorder {
			continue
		}

		urgency, reason := ClassifyUrgency(product.CurrentStock, plan.ReorderPoint)
		recommendations = append(recommendations, domain.StockRecommendation{
			Product:             summarize(product),
			ReorderPoint:        plan.ReorderPoint,
			RecommendedQuantity: plan.RecommendedQuantity,
			Urgency:             urgency,
			Reason:              reason,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Urgency > recommendations[j].Urgency
	})
	return recommendations
}

func summarize(p domain.Product) domain.ProductSummary {
	return domain.ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		Category:     p.Category,
		CurrentStock: p.CurrentStock,
		MinimumStock: p.MinimumStock,
		MaximumStock: p.MaximumStock,
	}
}
