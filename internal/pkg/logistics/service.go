package logistics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

// Message texts returned to the provider.
const (
	MessageUpdated  = "Order status updated"
	MessageNotFound = "Order not found in database"
)

// Service reconciles logistics events into order state.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a logistics service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates a logistics service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// EntityType implements webhook.Reconciler.
func (s *Service) EntityType() webhook.EntityType {
	return webhook.EntityShipment
}

// Reconcile resolves the order, applies the canonical status under the
// lifecycle guard and appends tracking history. Result.Reference carries the
// order number once the order is resolved.
func (s *Service) Reconcile(ctx context.Context, ev webhook.Event) (webhook.Result, error) {
	in, ok := ev.Snapshot.(*ShipmentEvent)
	if !ok || in == nil {
		return webhook.Result{}, fmt.Errorf("logistics: unexpected snapshot %T", ev.Snapshot)
	}

	order, err := s.resolve(ctx, in)
	if errors.Is(err, webhook.ErrEntityNotFound) {
		return webhook.Result{Outcome: webhook.OutcomeNotFound, Reference: ev.Reference, Message: MessageNotFound}, nil
	}
	if err != nil {
		return webhook.Result{Reference: ev.Reference}, err
	}

	res := webhook.Result{EntityID: order.ID, Reference: order.OrderNumber, Status: string(order.Status)}
	target := MapShipmentStatus(in.RawStatus)
	now := s.now()

	upd := ShipmentUpdate{
		Status:         target,
		ShipmentStatus: in.RawStatus,
		CurrentStatus:  in.Description,
		TrackedAt:      now,
	}
	switch target {
	case models.OrderStatusShipped:
		upd.ShippedAt = &now
	case models.OrderStatusDelivered:
		delivered := now
		if in.DeliveredAt != nil {
			delivered = *in.DeliveredAt
		}
		upd.ShippedAt = &now
		upd.DeliveredAt = &delivered
	}

	applied, err := s.repo.ApplyShipmentUpdate(ctx, order.ID, upd, AllowedPredecessors(target))
	if err != nil {
		return res, fmt.Errorf("logistics: update order %d: %w", order.ID, err)
	}
	if applied {
		res.Outcome = webhook.OutcomeApplied
		res.Status = string(target)
		res.Message = MessageUpdated
	} else {
		res.Outcome = webhook.OutcomeStale
		res.Message = fmt.Sprintf("order no longer accepts %s (was %s)", target, order.Status)
	}

	res.SideEffect = s.appendTracking(ctx, order, in, ev.Raw, now)
	return res, nil
}

func (s *Service) resolve(ctx context.Context, in *ShipmentEvent) (*models.Order, error) {
	if !in.HasReference() {
		return nil, fmt.Errorf("%w: no awb or order id", webhook.ErrEntityNotFound)
	}
	// an unknown AWB still falls back to the order id
	if in.AWB != "" {
		order, err := s.repo.FindByAWB(ctx, in.AWB)
		if err == nil || !errors.Is(err, webhook.ErrEntityNotFound) || in.ExternalOrderID == "" {
			return order, err
		}
	}
	return s.repo.FindByExternalOrderID(ctx, in.ExternalOrderID)
}

// appendTracking stores the event for replay. Its error is reported, never
// returned.
func (s *Service) appendTracking(ctx context.Context, order *models.Order, in *ShipmentEvent, raw []byte, now time.Time) (result *webhook.SideEffectResult) {
	result = &webhook.SideEffectResult{Name: "tracking_history"}
	defer func() {
		if r := recover(); r != nil {
			result.Err = &webhook.SideEffectError{Name: "tracking_history", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	status := in.Description
	if status == "" {
		status = in.RawStatus
	}
	code := in.StatusCode
	if code == "" {
		code = in.RawStatus
	}
	awb := order.AWBCode
	if awb == "" {
		awb = in.AWB
	}
	trackedAt := now
	if in.EventTime != nil {
		trackedAt = *in.EventTime
	}

	entry := &models.TrackingHistoryEntry{
		OrderID:      order.ID,
		AWBCode:      awb,
		Status:       status,
		StatusCode:   code,
		Remarks:      string(raw),
		TrackingDate: &trackedAt,
	}
	if err := s.repo.AppendTracking(ctx, entry); err != nil {
		result.Err = &webhook.SideEffectError{Name: "tracking_history", Err: err}
	}
	return result
}
