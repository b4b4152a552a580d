package logistics

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

// MemoryRepository is an in-process Repository for tests and local runs.
type MemoryRepository struct {
	mu       sync.Mutex
	orders   map[uint]*models.Order
	tracking []models.TrackingHistoryEntry

	// FailTracking makes AppendTracking return this error.
	FailTracking error
	// Writes counts successful mutating calls.
	Writes int
}

// NewMemoryRepository seeds a repository with orders.
func NewMemoryRepository(orders ...models.Order) *MemoryRepository {
	r := &MemoryRepository{orders: make(map[uint]*models.Order)}
	for i := range orders {
		o := orders[i]
		r.orders[o.ID] = &o
	}
	return r
}

func (r *MemoryRepository) FindByAWB(_ context.Context, awb string) (*models.Order, error) {
	return r.find(func(o *models.Order) bool { return o.AWBCode == awb }, awb)
}

func (r *MemoryRepository) FindByExternalOrderID(_ context.Context, externalID string) (*models.Order, error) {
	return r.find(func(o *models.Order) bool { return o.ExternalOrderID == externalID }, externalID)
}

func (r *MemoryRepository) find(match func(*models.Order) bool, ref string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *models.Order
	for _, o := range r.orders {
		if ref != "" && match(o) && (found == nil || o.ID < found.ID) {
			found = o
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: order %q", webhook.ErrEntityNotFound, ref)
	}
	cp := *found
	return &cp, nil
}

func (r *MemoryRepository) ApplyShipmentUpdate(_ context.Context, id uint, upd ShipmentUpdate, allowedFrom []models.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || !slices.Contains(allowedFrom, o.Status) {
		return false, nil
	}
	o.Status = upd.Status
	o.ShipmentStatus = upd.ShipmentStatus
	o.CurrentStatus = upd.CurrentStatus
	tracked := upd.TrackedAt
	o.TrackingUpdatedAt = &tracked
	o.UpdatedAt = tracked
	if upd.ShippedAt != nil && o.ShippedAt == nil {
		ts := *upd.ShippedAt
		o.ShippedAt = &ts
	}
	if upd.DeliveredAt != nil && o.DeliveredAt == nil {
		ts := *upd.DeliveredAt
		o.DeliveredAt = &ts
	}
	r.Writes++
	return true, nil
}

func (r *MemoryRepository) AppendTracking(_ context.Context, entry *models.TrackingHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailTracking != nil {
		return r.FailTracking
	}
	entry.ID = uint(len(r.tracking) + 1)
	r.tracking = append(r.tracking, *entry)
	r.Writes++
	return nil
}

// Order returns a copy of the stored row.
func (r *MemoryRepository) Order(id uint) (models.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return models.Order{}, false
	}
	return *o, true
}

// Tracking returns the appended history rows in insertion order.
func (r *MemoryRepository) Tracking() []models.TrackingHistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.tracking)
}
