package domain

import "time"

// GroupBy selects the time bucket used for sales series.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// PeriodSales is one time bucket of the sales series.
type PeriodSales struct {
	Period string  `json:"period"`
	Sales  float64 `json:"sales"`
	Orders int     `json:"orders"`
}

// SalesMetrics summarises a set of orders.
type SalesMetrics struct {
	TotalSales        float64       `json:"totalSales"`
	TotalOrders       int           `json:"totalOrders"`
	AverageOrderValue float64       `json:"averageOrderValue"`
	GroupedSales      []PeriodSales `json:"groupedSales"`
}

// ProductSales is a top-selling product with display fields attached.
type ProductSales struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// CustomerSummary is one customer's spend within the analysed range.
type CustomerSummary struct {
	Customer   string  `json:"customer"`
	Name       string  `json:"name"`
	TotalSpent float64 `json:"totalSpent"`
	OrderCount int     `json:"orderCount"`
}

// CustomerSegments groups customers by value.
type CustomerSegments struct {
	HighValue  []CustomerSummary `json:"highValue"`
	Regular    []CustomerSummary `json:"regular"`
	Occasional []CustomerSummary `json:"occasional"`
}

// SalesQuery carries the parameters of a sales analytics request. Nil dates
// fall back to the trailing window ending now.
type SalesQuery struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	GroupBy   GroupBy    `json:"groupBy"`
}

type SalesAnalyticsResult struct {
	SalesData        SalesMetrics     `json:"salesData"`
	TopProducts      []ProductSales   `json:"topProducts"`
	CustomerSegments CustomerSegments `json:"customerSegments"`
}

type InventoryMetrics struct {
	TotalProducts int     `json:"totalProducts"`
	TotalValue    float64 `json:"totalValue"`
	LowStock      int     `json:"lowStock"`
	OutOfStock    int     `json:"outOfStock"`
	ExpiringSoon  int     `json:"expiringSoon"`
}

type StockDistribution struct {
	Overstocked int `json:"overstocked"`
	Optimal     int `json:"optimal"`
	Low         int `json:"low"`
	Critical    int `json:"critical"`
}

type CategoryShare struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type InventoryAnalyticsResult struct {
	InventoryMetrics     InventoryMetrics  `json:"inventoryMetrics"`
	StockDistribution    StockDistribution `json:"stockDistribution"`
	CategoryDistribution []CategoryShare   `json:"categoryDistribution"`
}

// ProductSummary is the product view embedded in a recommendation.
type ProductSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Category     string `json:"category"`
	CurrentStock int    `json:"currentStock"`
	MinimumStock int    `json:"minimumStock"`
	MaximumStock int    `json:"maximumStock"`
}

// Urgency ranks how close a product is to stockout, 1 (regular) to 3 (critical).
type Urgency int

const (
	UrgencyRegular     Urgency = 1
	UrgencyApproaching Urgency = 2
	UrgencyCritical    Urgency = 3
)

type StockRecommendation struct {
	Product             ProductSummary `json:"product"`
	ReorderPoint        int            `json:"reorderPoint"`
	RecommendedQuantity int            `json:"recommendedQuantity"`
	Urgency             Urgency        `json:"urgency"`
	Reason              string         `json:"reason"`
}
