package logistics

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

// Repository provides DB operations used by the shipment reconciler.
type Repository interface {
	FindByAWB(ctx context.Context, awb string) (*models.Order, error)
	FindByExternalOrderID(ctx context.Context, externalID string) (*models.Order, error)
	// ApplyShipmentUpdate writes upd in one statement if the stored status is one
	// of allowedFrom. It reports whether the row was written.
	ApplyShipmentUpdate(ctx context.Context, id uint, upd ShipmentUpdate, allowedFrom []models.OrderStatus) (bool, error)
	AppendTracking(ctx context.Context, entry *models.TrackingHistoryEntry) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a logistics repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByAWB(ctx context.Context, awb string) (*models.Order, error) {
	return r.findOne(ctx, "awb_code = ?", awb)
}

func (r *gormRepository) FindByExternalOrderID(ctx context.Context, externalID string) (*models.Order, error) {
	return r.findOne(ctx, "shiprocket_order_id = ?", externalID)
}

func (r *gormRepository) findOne(ctx context.Context, where string, value string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where(where, value).Order("id ASC").First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %q", webhook.ErrEntityNotFound, value)
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) ApplyShipmentUpdate(ctx context.Context, id uint, upd ShipmentUpdate, allowedFrom []models.OrderStatus) (bool, error) {
	if len(allowedFrom) == 0 {
		return false, nil
	}
	updates := map[string]interface{}{
		"status":              upd.Status,
		"shipment_status":     upd.ShipmentStatus,
		"current_status":      upd.CurrentStatus,
		"tracking_updated_at": upd.TrackedAt,
		"updated_at":          upd.TrackedAt,
	}
	if upd.ShippedAt != nil {
		updates["shipped_at"] = gorm.Expr("COALESCE(shipped_at, ?)", *upd.ShippedAt)
	}
	if upd.DeliveredAt != nil {
		updates["delivered_at"] = gorm.Expr("COALESCE(delivered_at, ?)", *upd.DeliveredAt)
	}

	tx := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, allowedFrom).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) AppendTracking(ctx context.Context, entry *models.TrackingHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
