package billing

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

// MemoryRepository is an in-process Repository for tests and local runs.
// Each write holds the lock for the whole compare-and-set, like a row lock.
type MemoryRepository struct {
	mu            sync.Mutex
	subscriptions map[uint]*models.Subscription
	invoices      map[string]*models.Invoice
	nextInvoiceID uint

	// FailInvoices makes UpsertInvoice return this error.
	FailInvoices error
	// Writes counts successful mutating calls.
	Writes int
}

// NewMemoryRepository seeds a repository with subs.
func NewMemoryRepository(subs ...models.Subscription) *MemoryRepository {
	r := &MemoryRepository{
		subscriptions: make(map[uint]*models.Subscription),
		invoices:      make(map[string]*models.Invoice),
	}
	for i := range subs {
		sub := subs[i]
		r.subscriptions[sub.ID] = &sub
	}
	return r
}

func (r *MemoryRepository) FindByExternalID(_ context.Context, externalID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subscriptions {
		if sub.ExternalSubscriptionID == externalID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: subscription %q", webhook.ErrEntityNotFound, externalID)
}

func (r *MemoryRepository) ApplyTransition(_ context.Context, id uint, upd SubscriptionUpdate, allowedFrom []models.SubscriptionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subscriptions[id]
	if !ok || !slices.Contains(allowedFrom, sub.Status) {
		return false, nil
	}
	if upd.SyncPeriod && upd.PaidCount > 0 && sub.PaidCount > upd.PaidCount {
		return false, nil
	}
	sub.Status = upd.Status
	if upd.SyncPeriod {
		sub.CurrentStart = upd.CurrentStart
		sub.CurrentEnd = upd.CurrentEnd
		sub.PaidCount = upd.PaidCount
		sub.RemainingCount = upd.RemainingCount
	}
	sub.UpdatedAt = time.Now()
	r.Writes++
	return true, nil
}

func (r *MemoryRepository) UpsertInvoice(_ context.Context, invoice *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInvoices != nil {
		return r.FailInvoices
	}
	key := fmt.Sprintf("%d/%s", invoice.SubscriptionID, invoice.ExternalInvoiceID)
	if existing, ok := r.invoices[key]; ok {
		existing.ExternalPaymentID = invoice.ExternalPaymentID
		existing.Status = invoice.Status
		existing.UpdatedAt = time.Now()
		r.Writes++
		return nil
	}
	r.nextInvoiceID++
	cp := *invoice
	cp.ID = r.nextInvoiceID
	r.invoices[key] = &cp
	invoice.ID = cp.ID
	r.Writes++
	return nil
}

// Subscription returns a copy of the stored row.
func (r *MemoryRepository) Subscription(id uint) (models.Subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subscriptions[id]
	if !ok {
		return models.Subscription{}, false
	}
	return *sub, true
}

// Invoices returns copies of all stored invoices.
func (r *MemoryRepository) Invoices() []models.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out
}
