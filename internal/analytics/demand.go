package analytics

import (
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
)

// AverageDailyDemand is the quantity sold over the trailing window divided
// by the window length. Days without sales still count toward the divisor.
func AverageDailyDemand(product domain.Product, now time.Time, windowDays int) float64 {
	if windowDays <= 0 {
		return 0
	}

	cutoff := now.AddDate(0, 0, -windowDays)
	sold := 0
	for _, sale := range product.SalesHistory {
		if sale.Date.Before(cutoff) || sale.Date.After(now) {
			continue
		}
		sold += sale.Quantity
	}
	if sold <= 0 {
		return 0
	}

	return float64(sold) / float64(windowDays)
}

// TotalUnitsSold sums the whole sales history.
func TotalUnitsSold(product domain.Product) int {
	total := 0
	for _, sale := range product.SalesHistory {
		total += sale.Quantity
	}
	return total
}
