package logistics

import (
	"time"

	"github.com/giftcraft/ingest/app/models"
)

// ShipmentEvent is the normalized logistics webhook. Every field is optional;
// aliases used by different provider payload versions are already folded in.
type ShipmentEvent struct {
	AWB             string
	ExternalOrderID string
	// RawStatus is the provider's status string, kept for display.
	RawStatus   string
	StatusCode  string
	Description string
	// EventTime is when the provider observed the scan, if sent.
	EventTime   *time.Time
	DeliveredAt *time.Time
}

// HasReference reports whether the event names an AWB or an order id.
func (e *ShipmentEvent) HasReference() bool {
	return e.AWB != "" || e.ExternalOrderID != ""
}

// ShipmentUpdate is the set of order columns written by one event.
type ShipmentUpdate struct {
	Status         models.OrderStatus
	ShipmentStatus string
	CurrentStatus  string
	TrackedAt      time.Time
	// ShippedAt and DeliveredAt are only written when the column is still null.
	ShippedAt   *time.Time
	DeliveredAt *time.Time
}
