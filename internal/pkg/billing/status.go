package billing

import (
	"strings"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

// Transition is the mapped effect of a subscription event.
type Transition struct {
	Status models.SubscriptionStatus
	// SyncPeriod copies start/end, paid and remaining counts from the snapshot.
	SyncPeriod bool
	// RecordInvoice upserts an invoice when the event carries a payment.
	RecordInvoice bool
}

// NoOp is returned for events the store does not act on.
var NoOp = Transition{}

// IsNoOp reports whether t leaves the subscription untouched.
func (t Transition) IsNoOp() bool {
	return t.Status == ""
}

// SubscriptionKinds is the event vocabulary the mapper understands.
var SubscriptionKinds = []string{"activated", "charged", "cancelled", "completed", "paused", "resumed", "updated"}

// MapSubscriptionEvent translates an event kind (and, for "updated", the
// provider-declared status) into a canonical transition.
func MapSubscriptionEvent(kind, declaredStatus string) Transition {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "activated":
		return Transition{Status: models.SubscriptionStatusActive, SyncPeriod: true, RecordInvoice: true}
	case "charged":
		return Transition{Status: models.SubscriptionStatusCharged, SyncPeriod: true, RecordInvoice: true}
	case "cancelled":
		return Transition{Status: models.SubscriptionStatusCancelled}
	case "completed":
		return Transition{Status: models.SubscriptionStatusCompleted}
	case "paused":
		return Transition{Status: models.SubscriptionStatusHalted}
	case "resumed":
		return Transition{Status: models.SubscriptionStatusActive}
	case "updated":
		status, ok := CanonicalStatus(declaredStatus)
		if !ok {
			return NoOp
		}
		return Transition{Status: status, SyncPeriod: true}
	default:
		return NoOp
	}
}

// CanonicalStatus maps a provider-declared subscription status onto the
// store's enum.
func CanonicalStatus(declared string) (models.SubscriptionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case "created", "authenticated", "pending":
		return models.SubscriptionStatusPending, true
	case "active":
		return models.SubscriptionStatusActive, true
	case "charged":
		return models.SubscriptionStatusCharged, true
	case "halted", "paused":
		return models.SubscriptionStatusHalted, true
	case "cancelled", "canceled":
		return models.SubscriptionStatusCancelled, true
	case "completed", "expired":
		return models.SubscriptionStatusCompleted, true
	default:
		return "", false
	}
}

var lifecycle = webhook.Lifecycle[models.SubscriptionStatus]{
	Statuses: []models.SubscriptionStatus{
		models.SubscriptionStatusPending,
		models.SubscriptionStatusActive,
		models.SubscriptionStatusCharged,
		models.SubscriptionStatusHalted,
		models.SubscriptionStatusCancelled,
		models.SubscriptionStatusCompleted,
	},
	Rank:     statusRank,
	Terminal: isTerminal,
}

func statusRank(s models.SubscriptionStatus) int {
	switch s {
	case models.SubscriptionStatusPending:
		return 0
	case models.SubscriptionStatusActive, models.SubscriptionStatusCharged, models.SubscriptionStatusHalted:
		return 1
	case models.SubscriptionStatusCancelled, models.SubscriptionStatusCompleted:
		return 2
	default:
		return -1
	}
}

func isTerminal(s models.SubscriptionStatus) bool {
	return s == models.SubscriptionStatusCancelled || s == models.SubscriptionStatusCompleted
}

// AllowedPredecessors lists the stored statuses a write of target may replace.
func AllowedPredecessors(target models.SubscriptionStatus) []models.SubscriptionStatus {
	return lifecycle.Predecessors(target)
}

// CanTransition reports whether a subscription in from may move to to.
func CanTransition(from, to models.SubscriptionStatus) bool {
	return lifecycle.Allows(from, to)
}
