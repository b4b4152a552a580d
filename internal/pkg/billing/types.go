package billing

import (
	"time"

	"github.com/giftcraft/ingest/app/models"
)

// SubscriptionEvent is the provider-neutral snapshot of a subscription webhook.
// Optional provider fields are defaulted so callers never probe raw maps.
type SubscriptionEvent struct {
	Kind           string `validate:"required"`
	SubscriptionID string `validate:"required,max=191"`
	DeclaredStatus string
	CurrentStart   *time.Time
	CurrentEnd     *time.Time
	PaidCount      int `validate:"gte=0"`
	RemainingCount *int
	InvoiceID      string
	Payment        *PaymentSnapshot
}

// PaymentSnapshot is the payment entity embedded in a charge event.
type PaymentSnapshot struct {
	ID          string `validate:"required"`
	AmountMinor int64  `validate:"gte=0"`
	Currency    string
}

// SubscriptionUpdate is the set of columns written by one transition.
type SubscriptionUpdate struct {
	Status         models.SubscriptionStatus
	SyncPeriod     bool
	CurrentStart   *time.Time
	CurrentEnd     *time.Time
	PaidCount      int
	RemainingCount *int
}
