package logistics

import (
	"strings"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

var shipmentStatuses = map[string]models.OrderStatus{
	"PICKUP_SCHEDULED":    models.OrderStatusShipped,
	"PICKUP_GENERATED":    models.OrderStatusShipped,
	"PICKED_UP":           models.OrderStatusShipped,
	"SHIPPED":             models.OrderStatusShipped,
	"IN_TRANSIT":          models.OrderStatusShipped,
	"OUT_FOR_DELIVERY":    models.OrderStatusShipped,
	"REACHED_DESTINATION": models.OrderStatusShipped,
	"DELIVERED":           models.OrderStatusDelivered,
	"RTO":                 models.OrderStatusCancelled,
	"RTO_INITIATED":       models.OrderStatusCancelled,
	"RTO_IN_TRANSIT":      models.OrderStatusCancelled,
	"RTO_DELIVERED":       models.OrderStatusCancelled,
	"CANCELLED":           models.OrderStatusCancelled,
	"CANCELED":            models.OrderStatusCancelled,
	"LOST":                models.OrderStatusCancelled,
	"DAMAGED":             models.OrderStatusCancelled,
	"DESTROYED":           models.OrderStatusCancelled,
}

// MapShipmentStatus maps a raw provider status onto the canonical order status.
// Unknown and empty statuses land in processing.
func MapShipmentStatus(raw string) models.OrderStatus {
	if status, ok := shipmentStatuses[statusKey(raw)]; ok {
		return status
	}
	return models.OrderStatusProcessing
}

func statusKey(raw string) string {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	return key
}

var lifecycle = webhook.Lifecycle[models.OrderStatus]{
	Statuses: []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	},
	Rank:     statusRank,
	Terminal: isTerminal,
}

func statusRank(s models.OrderStatus) int {
	switch s {
	case models.OrderStatusPending:
		return 0
	case models.OrderStatusProcessing:
		return 1
	case models.OrderStatusShipped:
		return 2
	case models.OrderStatusDelivered, models.OrderStatusCancelled:
		return 3
	default:
		return -1
	}
}

func isTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusDelivered || s == models.OrderStatusCancelled
}

// AllowedPredecessors lists the stored statuses a write of target may replace.
func AllowedPredecessors(target models.OrderStatus) []models.OrderStatus {
	return lifecycle.Predecessors(target)
}

// CanTransition reports whether an order in from may move to to.
func CanTransition(from, to models.OrderStatus) bool {
	return lifecycle.Allows(from, to)
}
