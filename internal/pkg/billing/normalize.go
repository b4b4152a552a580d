package billing

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

var validate = validator.New()

type entityBlock[T any] struct {
	Entity *T `json:"entity"`
}

type rawSubscription struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	CurrentStart   *int64 `json:"current_start"`
	CurrentEnd     *int64 `json:"current_end"`
	PaidCount      *int   `json:"paid_count"`
	RemainingCount *int   `json:"remaining_count"`
}

type rawPayment struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type rawInvoice struct {
	ID string `json:"id"`
}

type rawEnvelope struct {
	Event   *string `json:"event"`
	Payload *struct {
		Subscription *entityBlock[rawSubscription] `json:"subscription"`
		Payment      *entityBlock[rawPayment]      `json:"payment"`
		Invoice      *entityBlock[rawInvoice]      `json:"invoice"`
	} `json:"payload"`
}

// ParseSubscriptionWebhook normalizes a payment provider envelope of the form
// {event, payload: {subscription: {entity}, payment?: {entity}, invoice?: {entity}}}.
func ParseSubscriptionWebhook(body []byte) (*SubscriptionEvent, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, webhook.Malformed("", "invalid json: "+err.Error())
	}
	if raw.Event == nil || strings.TrimSpace(*raw.Event) == "" {
		return nil, webhook.Malformed("event", "missing event discriminator")
	}
	if raw.Payload == nil || raw.Payload.Subscription == nil || raw.Payload.Subscription.Entity == nil {
		return nil, webhook.Malformed("payload.subscription.entity", "no subscription data in event")
	}

	sub := raw.Payload.Subscription.Entity
	out := &SubscriptionEvent{
		Kind:           EventKind(*raw.Event),
		SubscriptionID: strings.TrimSpace(sub.ID),
		DeclaredStatus: strings.ToLower(strings.TrimSpace(sub.Status)),
		CurrentStart:   unixTime(sub.CurrentStart),
		CurrentEnd:     unixTime(sub.CurrentEnd),
		RemainingCount: sub.RemainingCount,
	}
	if sub.PaidCount != nil {
		out.PaidCount = *sub.PaidCount
	}

	if p := raw.Payload.Payment; p != nil && p.Entity != nil && strings.TrimSpace(p.Entity.ID) != "" {
		out.Payment = &PaymentSnapshot{
			ID:          strings.TrimSpace(p.Entity.ID),
			AmountMinor: p.Entity.Amount,
			Currency:    strings.ToUpper(strings.TrimSpace(p.Entity.Currency)),
		}
	}
	if inv := raw.Payload.Invoice; inv != nil && inv.Entity != nil {
		out.InvoiceID = strings.TrimSpace(inv.Entity.ID)
	}

	if err := validate.Struct(out); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return nil, webhook.Malformed(verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, webhook.Malformed("", err.Error())
	}
	return out, nil
}

// EventKind strips the entity prefix from a provider event name, so
// "subscription.charged" becomes "charged".
func EventKind(event string) string {
	kind := strings.ToLower(strings.TrimSpace(event))
	return strings.TrimPrefix(kind, "subscription.")
}

func unixTime(v *int64) *time.Time {
	if v == nil || *v <= 0 {
		return nil
	}
	t := time.Unix(*v, 0).UTC()
	return &t
}

// Normalize parses body and wraps it as an engine event.
func Normalize(body []byte) (webhook.Event, error) {
	in, err := ParseSubscriptionWebhook(body)
	if err != nil {
		return webhook.Event{}, err
	}
	return webhook.Event{
		Provider:   models.WebhookProviderRazorpay,
		EntityType: webhook.EntitySubscription,
		Kind:       in.Kind,
		Reference:  in.SubscriptionID,
		Snapshot:   in,
		Raw:        body,
	}, nil
}
