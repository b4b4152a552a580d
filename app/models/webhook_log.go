package models

import "time"

// Webhook provider constants.
const (
	WebhookProviderRazorpay   = "razorpay"
	WebhookProviderShiprocket = "shiprocket"
)

// WebhookLog stores every accepted webhook call verbatim. Payload is written once
// on receipt; only the processing columns are filled in after handling finishes.
type WebhookLog struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Provider         string     `gorm:"type:varchar(20);not null;index:idx_webhook_logs_provider_created,priority:1" json:"provider"`
	DeliveryID       string     `gorm:"type:varchar(191);not null;default:'';index" json:"delivery_id"`
	EventType        string     `gorm:"type:varchar(100);not null;default:'';index" json:"event_type"`
	Payload          string     `gorm:"type:longtext;not null" json:"payload"`
	SignatureVerdict string     `gorm:"type:varchar(16);not null;default:''" json:"signature_verdict"`
	Outcome          string     `gorm:"type:varchar(32);not null;default:'';index" json:"outcome"`
	ProcessingError  string     `gorm:"type:text" json:"processing_error"`
	ProcessedAt      *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index:idx_webhook_logs_provider_created,priority:2" json:"created_at"`
}
