package domain

import "time"

type NotificationType string

const (
	NotificationLowStock    NotificationType = "low_stock"
	NotificationOrderUpdate NotificationType = "order_update"
	NotificationSystem      NotificationType = "system"
)

// EntityRef points a notification at the entity it is about.
type EntityRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// NotificationRequest is what callers hand to an emitter.
type NotificationRequest struct {
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	RecipientIDs  []string         `json:"recipientIds"`
	RelatedEntity *EntityRef       `json:"relatedEntity,omitempty"`
}

// Notification is an emitted NotificationRequest.
type Notification struct {
	ID string `json:"id"`
	NotificationRequest
	CreatedAt time.Time `json:"createdAt"`
}
