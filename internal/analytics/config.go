package analytics

import (
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/config"
)

// Config holds the named business constants of the engine. The zero value
// is not usable; start from DefaultConfig.
type Config struct {
	LeadTimeDays      float64
	SafetyStockDays   float64
	OrderingCost      float64
	HoldingCostRate   float64
	DemandWindowDays  int
	SalesRangeDays    int // default sales window when a query omits dates
	ExpiryWarningDays int
	TopProductsLimit  int
	LookupConcurrency int
	Location          *time.Location
}

// DefaultConfig returns the stock business rules: one week lead time, two
// weeks of safety cover, 50 per order and a 20% yearly carrying cost.
func DefaultConfig() Config {
	return Config{
		LeadTimeDays:      7,
		SafetyStockDays:   14,
		OrderingCost:      50,
		HoldingCostRate:   0.2,
		DemandWindowDays:  30,
		SalesRangeDays:    30,
		ExpiryWarningDays: 30,
		TopProductsLimit:  10,
		LookupConcurrency: 4,
		Location:          time.UTC,
	}
}

// ConfigFrom maps application configuration onto the engine, keeping
// defaults for anything left unset.
func ConfigFrom(cfg config.AnalyticsConfig) Config {
	c := DefaultConfig()
	if cfg.LeadTimeDays > 0 {
		c.LeadTimeDays = cfg.LeadTimeDays
	}
	if cfg.SafetyStockDays > 0 {
		c.SafetyStockDays = cfg.SafetyStockDays
	}
	if cfg.OrderingCost > 0 {
		c.OrderingCost = cfg.OrderingCost
	}
	if cfg.HoldingCostRate > 0 {
		c.HoldingCostRate = cfg.HoldingCostRate
	}
	if cfg.DemandWindowDays > 0 {
		c.DemandWindowDays = cfg.DemandWindowDays
	}
	if cfg.SalesRangeDays > 0 {
		c.SalesRangeDays = cfg.SalesRangeDays
	}
	if cfg.ExpiryWarningDays > 0 {
		c.ExpiryWarningDays = cfg.ExpiryWarningDays
	}
	if cfg.TopProductsLimit > 0 {
		c.TopProductsLimit = cfg.TopProductsLimit
	}
	if cfg.LookupConcurrency > 0 {
		c.LookupConcurrency = cfg.LookupConcurrency
	}
	c.Location = cfg.Location()
	return c
}
