package logistics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

func seedOrder(status models.OrderStatus) models.Order {
	return models.Order{
		ID:              42,
		OrderNumber:     "GC-1042",
		AWBCode:         "AWB42",
		ExternalOrderID: "SR42",
		Status:          status,
	}
}

func shipmentEvent(t *testing.T, body string) webhook.Event {
	t.Helper()
	ev, err := Normalize([]byte(body))
	require.NoError(t, err)
	return ev
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestReconcile_ShippedUpdatesOrder(t *testing.T) {
	repo := NewMemoryRepository(seedOrder(models.OrderStatusProcessing))
	svc := NewService(repo)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	res, err := svc.Reconcile(context.Background(), shipmentEvent(t, `{"awb":"AWB42","current_status":"IN TRANSIT","current_status_description":"Left origin hub"}`))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeApplied, res.Outcome)
	assert.Equal(t, "GC-1042", res.Reference)
	assert.Equal(t, "shipped", res.Status)
	assert.Equal(t, MessageUpdated, res.Message)

	o, _ := repo.Order(42)
	assert.Equal(t, models.OrderStatusShipped, o.Status)
	assert.Equal(t, "IN TRANSIT", o.ShipmentStatus)
	assert.Equal(t, "Left origin hub", o.CurrentStatus)
	require.NotNil(t, o.ShippedAt)
	assert.Equal(t, now, *o.ShippedAt)
	require.NotNil(t, o.TrackingUpdatedAt)
	assert.Nil(t, o.DeliveredAt)

	history := repo.Tracking()
	require.Len(t, history, 1)
	assert.Equal(t, uint(42), history[0].OrderID)
	assert.Equal(t, "Left origin hub", history[0].Status)
	assert.Contains(t, history[0].Remarks, `"AWB42"`)
}

func TestReconcile_DeliveredAtIsMonotonic(t *testing.T) {
	repo := NewMemoryRepository(seedOrder(models.OrderStatusShipped))
	svc := NewService(repo)

	first := `{"awb":"AWB42","current_status":"DELIVERED","delivered_date":"2024-06-02 10:30:00"}`
	_, err := svc.Reconcile(context.Background(), shipmentEvent(t, first))
	require.NoError(t, err)

	second := `{"awb":"AWB42","current_status":"DELIVERED","delivered_date":"2024-06-05 18:00:00"}`
	res, err := svc.Reconcile(context.Background(), shipmentEvent(t, second))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeApplied, res.Outcome)

	late := `{"awb":"AWB42","current_status":"OUT FOR DELIVERY"}`
	res, err = svc.Reconcile(context.Background(), shipmentEvent(t, late))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeStale, res.Outcome)

	o, _ := repo.Order(42)
	assert.Equal(t, models.OrderStatusDelivered, o.Status)
	assert.Equal(t, "DELIVERED", o.ShipmentStatus)
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, time.Date(2024, 6, 2, 10, 30, 0, 0, time.UTC), *o.DeliveredAt)
	assert.Len(t, repo.Tracking(), 3)
}

func TestReconcile_DeliveredWithoutDateUsesProcessingTime(t *testing.T) {
	repo := NewMemoryRepository(seedOrder(models.OrderStatusShipped))
	svc := NewService(repo)
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	_, err := svc.Reconcile(context.Background(), shipmentEvent(t, `{"awb":"AWB42","current_status":"Delivered"}`))
	require.NoError(t, err)

	o, _ := repo.Order(42)
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, now, *o.DeliveredAt)
}

func TestReconcile_UnknownAWBWritesNothing(t *testing.T) {
	repo := NewMemoryRepository(seedOrder(models.OrderStatusProcessing))
	svc := NewService(repo)

	for _, body := range []string{
		`{"awb":"NOPE","current_status":"DELIVERED"}`,
		`{"order_id":"NOPE","current_status":"DELIVERED"}`,
		`{"current_status":"DELIVERED"}`,
	} {
		res, err := svc.Reconcile(context.Background(), shipmentEvent(t, body))
		require.NoError(t, err)
		assert.Equal(t, webhook.OutcomeNotFound, res.Outcome)
		assert.Equal(t, MessageNotFound, res.Message)
		assert.True(t, res.Acknowledged())
	}
	assert.Zero(t, repo.Writes)
	assert.Empty(t, repo.Tracking())
}

func TestReconcile_FallsBackToExternalOrderID(t *testing.T) {
	repo := NewMemoryRepository(seedOrder(models.OrderStatusPending))
	svc := NewService(repo)

	res, err := svc.Reconcile(context.Background(), shipmentEvent(t, `{"awb":"UNKNOWN","order_id":"SR42","current_status":"PICKED UP"}`))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeApplied, res.Outcome)
	assert.Equal(t, uint(42), res.EntityID)

	tracking := repo.Tracking()
	require.Len(t, tracking, 1)
	assert.Equal(t, "AWB42", tracking[0].AWBCode)
}

func TestReconcile_CancellationFromShipped(t *testing.T) {
	repo := NewMemoryRepository(seedOrder(models.OrderStatusShipped))
	svc := NewService(repo)

	res, err := svc.Reconcile(context.Background(), shipmentEvent(t, `{"awb":"AWB42","current_status":"RTO INITIATED"}`))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeApplied, res.Outcome)
	assert.Equal(t, "cancelled", res.Status)

	res, err = svc.Reconcile(context.Background(), shipmentEvent(t, `{"awb":"AWB42","current_status":"DELIVERED"}`))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeStale, res.Outcome)

	o, _ := repo.Order(42)
	assert.Equal(t, models.OrderStatusCancelled, o.Status)
	assert.Nil(t, o.DeliveredAt)
}

func TestReconcile_ConcurrentProcessingAndShipped(t *testing.T) {
	for i := 0; i < 50; i++ {
		repo := NewMemoryRepository(seedOrder(models.OrderStatusPending))
		svc := NewService(repo)
		processing := shipmentEvent(t, `{"awb":"AWB42","current_status":"AWB ASSIGNED"}`)
		shipped := shipmentEvent(t, `{"awb":"AWB42","current_status":"SHIPPED"}`)

		var wg sync.WaitGroup
		start := make(chan struct{})
		for _, ev := range []webhook.Event{processing, shipped} {
			wg.Add(1)
			go func(ev webhook.Event) {
				defer wg.Done()
				<-start
				_, err := svc.Reconcile(context.Background(), ev)
				assert.NoError(t, err)
			}(ev)
		}
		close(start)
		wg.Wait()

		o, _ := repo.Order(42)
		require.Equal(t, models.OrderStatusShipped, o.Status, "iteration %d", i)
	}
}

func TestReconcile_TrackingFailureIsSideEffect(t *testing.T) {
	repo := NewMemoryRepository(seedOrder(models.OrderStatusProcessing))
	repo.FailTracking = errors.New("disk full")
	svc := NewService(repo)

	res, err := svc.Reconcile(context.Background(), shipmentEvent(t, `{"awb":"AWB42","current_status":"SHIPPED"}`))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeApplied, res.Outcome)
	assert.True(t, res.SideEffect.Failed())

	o, _ := repo.Order(42)
	assert.Equal(t, models.OrderStatusShipped, o.Status)
}
