package logistics

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
)

// flexString accepts JSON strings, numbers and null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// objects, arrays and booleans are ignored rather than rejected
		*f = ""
		return nil
	}
	*f = flexString(n.String())
	return nil
}

type rawShipment struct {
	AWB                      flexString `json:"awb"`
	AWBCode                  flexString `json:"awb_code"`
	CurrentStatus            flexString `json:"current_status"`
	ShipmentStatus           flexString `json:"shipment_status"`
	CurrentStatusID          flexString `json:"current_status_id"`
	ShipmentStatusID         flexString `json:"shipment_status_id"`
	StatusCode               flexString `json:"status_code"`
	CurrentStatusDescription flexString `json:"current_status_description"`
	Status                   flexString `json:"status"`
	OrderID                  flexString `json:"order_id"`
	SROrderID                flexString `json:"sr_order_id"`
	CurrentTimestamp         flexString `json:"current_timestamp"`
	DeliveredDate            flexString `json:"delivered_date"`
	DeliveredAt              flexString `json:"delivered_at"`
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
	"02 01 2006 15:04:05",
}

// ParseShipmentWebhook decodes a flat logistics body. Only a body that is not a
// JSON object is malformed; missing fields are left empty.
func ParseShipmentWebhook(body []byte) (*ShipmentEvent, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, webhook.Malformed("", "Invalid JSON data")
	}
	var raw rawShipment
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, webhook.Malformed("", "Invalid JSON data")
	}

	return &ShipmentEvent{
		AWB:             first(raw.AWB, raw.AWBCode),
		ExternalOrderID: first(raw.OrderID, raw.SROrderID),
		RawStatus:       first(raw.CurrentStatus, raw.ShipmentStatus),
		StatusCode:      first(raw.CurrentStatusID, raw.ShipmentStatusID, raw.StatusCode),
		Description:     first(raw.CurrentStatusDescription, raw.Status),
		EventTime:       parseTime(first(raw.CurrentTimestamp)),
		DeliveredAt:     parseTime(first(raw.DeliveredDate, raw.DeliveredAt)),
	}, nil
}

func first(values ...flexString) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

// parseTime returns nil for empty or unparseable input. Zoneless layouts are
// read as UTC; unix seconds are accepted too.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil && sec > 0 {
		t := time.Unix(sec, 0).UTC()
		return &t
	}
	return nil
}

// Normalize parses body into an engine event.
func Normalize(body []byte) (webhook.Event, error) {
	in, err := ParseShipmentWebhook(body)
	if err != nil {
		return webhook.Event{}, err
	}
	ref := in.AWB
	if ref == "" {
		ref = in.ExternalOrderID
	}
	return webhook.Event{
		Provider:   models.WebhookProviderShiprocket,
		EntityType: webhook.EntityShipment,
		Kind:       in.RawStatus,
		Reference:  ref,
		Snapshot:   in,
		Raw:        body,
	}, nil
}
