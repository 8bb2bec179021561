package analytics

import (
	"math"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
)

// ReorderPlan holds every figure derived for one product in a single pass.
type ReorderPlan struct {
	AverageDailyDemand  float64 `json:"averageDailyDemand"`
	SafetyStock         float64 `json:"safetyStock"`
	ReorderPoint        int     `json:"reorderPoint"`
	EconomicOrderQty    float64 `json:"economicOrderQty"`
	RecommendedQuantity int     `json:"recommendedQuantity"`
	NeedsReorder        bool    `json:"needsReorder"`
}

// Policy derives reorder points and order quantities from Config.
type Policy struct {
	cfg Config
}

func NewPolicy(cfg Config) *Policy {
	return &Policy{cfg: cfg}
}

// Evaluate computes the reorder plan of a product as of now.
func (p *Policy) Evaluate(product domain.Product, now time.Time) ReorderPlan {
	plan := ReorderPlan{}

	// 1. Demand over the trailing window
	plan.AverageDailyDemand = AverageDailyDemand(product, now, p.cfg.DemandWindowDays)

	// 2. Safety stock = demand × safety days
	plan.SafetyStock = plan.AverageDailyDemand * p.cfg.SafetyStockDays

	// 3. Reorder point = demand during lead time + safety stock, rounded up
	reorderPoint := plan.AverageDailyDemand*p.cfg.LeadTimeDays + plan.SafetyStock
	plan.ReorderPoint = int(math.Ceil(math.Max(0, reorderPoint)))

	// 4. Economic order quantity over the full sales history
	plan.EconomicOrderQty = p.economicOrderQuantity(product)

	// 5. Trigger
	plan.NeedsReorder = product.CurrentStock <= plan.ReorderPoint

	// 6. Quantity capped by remaining capacity; at least one unit once triggered
	capacity := product.MaximumStock - product.CurrentStock
	qty := int(math.Ceil(plan.EconomicOrderQty))
	if capacity < qty {
		qty = capacity
	}
	if plan.NeedsReorder && qty < 1 {
		qty = 1
	}
	plan.RecommendedQuantity = qty

	return plan
}

func (p *Policy) economicOrderQuantity(product domain.Product) float64 {
	holdingCost := product.Price * p.cfg.HoldingCostRate
	if holdingCost <= 0 {
		return 0
	}

	annualDemand := float64(TotalUnitsSold(product))
	if annualDemand <= 0 {
		return 0
	}

	return math.Sqrt(2 * annualDemand * p.cfg.OrderingCost / holdingCost)
}
