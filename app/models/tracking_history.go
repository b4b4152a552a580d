package models

import "time"

// TrackingHistoryEntry is one shipment event received for an order. Rows are
// insert-only; Remarks keeps the full raw payload for replay.
type TrackingHistoryEntry struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	OrderID      uint       `gorm:"not null;index" json:"order_id"`
	AWBCode      string     `gorm:"column:awb_code;type:varchar(100);not null;default:'';index" json:"awb_code"`
	Status       string     `gorm:"type:varchar(255);not null;default:''" json:"status"`
	StatusCode   string     `gorm:"type:varchar(100);not null;default:''" json:"status_code"`
	Remarks      string     `gorm:"type:longtext" json:"remarks"`
	TrackingDate *time.Time `gorm:"type:timestamp;default:null" json:"tracking_date,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (TrackingHistoryEntry) TableName() string {
	return "shipment_tracking_history"
}
