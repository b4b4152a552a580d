package logistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

func TestParseShipmentWebhook_PrimaryFields(t *testing.T) {
	body := []byte(`{
		"awb": "1091188857722",
		"current_status": "DELIVERED",
		"current_status_id": 7,
		"current_status_description": "Delivered to consignee",
		"order_id": 485231849,
		"current_timestamp": "2024-06-02 11:04:05",
		"delivered_date": "2024-06-02 10:30:00"
	}`)

	ev, err := ParseShipmentWebhook(body)
	require.NoError(t, err)
	assert.Equal(t, "1091188857722", ev.AWB)
	assert.Equal(t, "485231849", ev.ExternalOrderID)
	assert.Equal(t, "DELIVERED", ev.RawStatus)
	assert.Equal(t, "7", ev.StatusCode)
	assert.Equal(t, "Delivered to consignee", ev.Description)
	require.NotNil(t, ev.EventTime)
	assert.Equal(t, time.Date(2024, 6, 2, 11, 4, 5, 0, time.UTC), *ev.EventTime)
	require.NotNil(t, ev.DeliveredAt)
	assert.Equal(t, time.Date(2024, 6, 2, 10, 30, 0, 0, time.UTC), *ev.DeliveredAt)
}

func TestParseShipmentWebhook_Aliases(t *testing.T) {
	body := []byte(`{
		"awb_code": "AWB-2",
		"shipment_status": "In Transit",
		"shipment_status_id": "18",
		"status": "Bag received at hub",
		"sr_order_id": "SR-77",
		"delivered_at": "2024-06-02T10:30:00+05:30"
	}`)

	ev, err := ParseShipmentWebhook(body)
	require.NoError(t, err)
	assert.Equal(t, "AWB-2", ev.AWB)
	assert.Equal(t, "SR-77", ev.ExternalOrderID)
	assert.Equal(t, "In Transit", ev.RawStatus)
	assert.Equal(t, "18", ev.StatusCode)
	assert.Equal(t, "Bag received at hub", ev.Description)
	require.NotNil(t, ev.DeliveredAt)
	assert.Equal(t, time.Date(2024, 6, 2, 5, 0, 0, 0, time.UTC), *ev.DeliveredAt)
}

func TestParseShipmentWebhook_PrimaryWinsOverAlias(t *testing.T) {
	ev, err := ParseShipmentWebhook([]byte(`{"awb":"A","awb_code":"B","current_status":"SHIPPED","shipment_status":"DELIVERED"}`))
	require.NoError(t, err)
	assert.Equal(t, "A", ev.AWB)
	assert.Equal(t, "SHIPPED", ev.RawStatus)
}

func TestParseShipmentWebhook_EmptyObject(t *testing.T) {
	ev, err := ParseShipmentWebhook([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, ev.HasReference())
	assert.Nil(t, ev.DeliveredAt)
}

func TestParseShipmentWebhook_BadDateIsAbsent(t *testing.T) {
	ev, err := ParseShipmentWebhook([]byte(`{"awb":"A","delivered_date":"yesterday","current_timestamp":null}`))
	require.NoError(t, err)
	assert.Nil(t, ev.DeliveredAt)
	assert.Nil(t, ev.EventTime)
}

func TestParseShipmentWebhook_Malformed(t *testing.T) {
	for _, body := range []string{``, `not json`, `{"awb":`, `[1,2]`, `null`, `"awb"`} {
		_, err := ParseShipmentWebhook([]byte(body))
		assert.ErrorIs(t, err, webhook.ErrMalformedPayload, "body %q", body)
	}
}

func TestNormalize_ReferencePrefersAWB(t *testing.T) {
	ev, err := Normalize([]byte(`{"awb":"A1","order_id":"9"}`))
	require.NoError(t, err)
	assert.Equal(t, webhook.EntityShipment, ev.EntityType)
	assert.Equal(t, "shiprocket", ev.Provider)
	assert.Equal(t, "A1", ev.Reference)

	ev, err = Normalize([]byte(`{"order_id":"9"}`))
	require.NoError(t, err)
	assert.Equal(t, "9", ev.Reference)
}
