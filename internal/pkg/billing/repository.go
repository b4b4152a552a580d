package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

// Repository provides DB operations used by the subscription reconciler.
type Repository interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.Subscription, error)
	// ApplyTransition writes upd in one statement if the stored status is one of
	// allowedFrom and, when upd carries a paid count, the stored count is not
	// ahead of it. It reports whether the row was written.
	ApplyTransition(ctx context.Context, id uint, upd SubscriptionUpdate, allowedFrom []models.SubscriptionStatus) (bool, error)
	UpsertInvoice(ctx context.Context, invoice *models.Invoice) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("razorpay_subscription_id = ?", externalID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: subscription %q", webhook.ErrEntityNotFound, externalID)
		}
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) ApplyTransition(ctx context.Context, id uint, upd SubscriptionUpdate, allowedFrom []models.SubscriptionStatus) (bool, error) {
	if len(allowedFrom) == 0 {
		return false, nil
	}
	updates := map[string]interface{}{
		"status":     upd.Status,
		"updated_at": time.Now(),
	}
	if upd.SyncPeriod {
		updates["current_start"] = upd.CurrentStart
		updates["current_end"] = upd.CurrentEnd
		updates["paid_count"] = upd.PaidCount
		updates["remaining_count"] = upd.RemainingCount
	}

	q := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND status IN ?", id, allowedFrom)
	if upd.SyncPeriod && upd.PaidCount > 0 {
		// an older billing cycle must not roll the counters back
		q = q.Where("paid_count <= ?", upd.PaidCount)
	}
	tx := q.Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) UpsertInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subscription_id"},
			{Name: "razorpay_invoice_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"razorpay_payment_id",
			"status",
			"updated_at",
		}),
	}).Create(invoice).Error
}
