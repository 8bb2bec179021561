package domain

import "strings"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = map[string]OrderStatus{
	"pending":    OrderStatusPending,
	"processing": OrderStatusProcessing,
	"shipped":    OrderStatusShipped,
	"delivered":  OrderStatusDelivered,
	"cancelled":  OrderStatusCancelled,
}

// ParseOrderStatus returns the status for a given label (case-insensitive).
func ParseOrderStatus(label string) (OrderStatus, bool) {
	status, ok := orderStatuses[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// IsTerminal reports whether no further transitions are expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}
