package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

const defaultCurrency = "INR"

// Service reconciles payment provider subscription events into local state.
type Service struct {
	repo            Repository
	defaultCurrency string
	now             func() time.Time
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository, currency string) *Service {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = defaultCurrency
	}
	return &Service{repo: repo, defaultCurrency: currency, now: time.Now}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, currency string) *Service {
	return NewService(NewRepository(db), currency)
}

// EntityType implements webhook.Reconciler.
func (s *Service) EntityType() webhook.EntityType {
	return webhook.EntitySubscription
}

// Reconcile resolves the subscription, applies the mapped transition under the
// lifecycle guard and records the invoice side effect for charged cycles.
func (s *Service) Reconcile(ctx context.Context, ev webhook.Event) (webhook.Result, error) {
	in, ok := ev.Snapshot.(*SubscriptionEvent)
	if !ok || in == nil {
		return webhook.Result{}, fmt.Errorf("billing: unexpected snapshot %T", ev.Snapshot)
	}
	res := webhook.Result{Reference: in.SubscriptionID}

	sub, err := s.repo.FindByExternalID(ctx, in.SubscriptionID)
	if err != nil {
		return res, err
	}
	res.EntityID = sub.ID
	res.Status = string(sub.Status)

	tr := MapSubscriptionEvent(in.Kind, in.DeclaredStatus)
	if tr.IsNoOp() {
		res.Outcome = webhook.OutcomeNoOp
		res.Message = fmt.Sprintf("%v: %s", webhook.ErrUnrecognizedEvent, in.Kind)
		return res, nil
	}

	upd := SubscriptionUpdate{Status: tr.Status, SyncPeriod: tr.SyncPeriod}
	if tr.SyncPeriod {
		upd.CurrentStart = in.CurrentStart
		upd.CurrentEnd = in.CurrentEnd
		upd.PaidCount = in.PaidCount
		upd.RemainingCount = in.RemainingCount
	}

	applied, err := s.repo.ApplyTransition(ctx, sub.ID, upd, AllowedPredecessors(tr.Status))
	if err != nil {
		return res, fmt.Errorf("billing: update subscription %d: %w", sub.ID, err)
	}
	if applied {
		res.Outcome = webhook.OutcomeApplied
		res.Status = string(tr.Status)
		res.Message = "Webhook processed"
	} else {
		res.Outcome = webhook.OutcomeStale
		res.Message = fmt.Sprintf("subscription no longer accepts %s (was %s)", tr.Status, sub.Status)
	}

	// A captured payment is invoiced even when the status write was stale.
	if tr.RecordInvoice && in.Payment != nil {
		res.SideEffect = s.recordInvoice(ctx, sub, in)
	}
	return res, nil
}

// recordInvoice upserts the invoice for a charged cycle. Its error is reported,
// never returned.
func (s *Service) recordInvoice(ctx context.Context, sub *models.Subscription, in *SubscriptionEvent) (result *webhook.SideEffectResult) {
	result = &webhook.SideEffectResult{Name: "invoice"}
	defer func() {
		if r := recover(); r != nil {
			result.Err = &webhook.SideEffectError{Name: "invoice", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	invoiceRef := in.InvoiceID
	if invoiceRef == "" {
		invoiceRef = in.Payment.ID
	}
	amount := in.Payment.AmountMinor
	if amount <= 0 {
		amount = sub.PlanAmountMinor
	}
	currency := in.Payment.Currency
	if currency == "" {
		currency = strings.ToUpper(strings.TrimSpace(sub.Currency))
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	paidAt := s.now()
	invoice := &models.Invoice{
		SubscriptionID:    sub.ID,
		ExternalInvoiceID: invoiceRef,
		ExternalPaymentID: in.Payment.ID,
		AmountMinor:       amount,
		Currency:          currency,
		Status:            models.InvoiceStatusPaid,
		PaidAt:            &paidAt,
	}
	if err := s.repo.UpsertInvoice(ctx, invoice); err != nil {
		result.Err = &webhook.SideEffectError{Name: "invoice", Err: err}
	}
	return result
}
