package models

import "time"

// OrderStatus is the canonical fulfillment state shown on the storefront.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is the slice of the storefront order row that the logistics webhook
// touches. Status is authoritative; ShipmentStatus and CurrentStatus keep the
// provider's raw strings for display only.
type Order struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	OrderNumber       string      `gorm:"type:varchar(64);not null;default:'';index" json:"order_number"`
	AWBCode           string      `gorm:"column:awb_code;type:varchar(100);not null;default:'';index" json:"awb_code"`
	ExternalOrderID   string      `gorm:"column:shiprocket_order_id;type:varchar(100);not null;default:'';index" json:"external_order_id"`
	Status            OrderStatus `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	ShipmentStatus    string      `gorm:"type:varchar(100);not null;default:''" json:"shipment_status"`
	CurrentStatus     string      `gorm:"type:varchar(255);not null;default:''" json:"current_status"`
	TrackingUpdatedAt *time.Time  `gorm:"type:timestamp;default:null" json:"tracking_updated_at,omitempty"`
	ShippedAt         *time.Time  `gorm:"type:timestamp;default:null" json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time  `gorm:"type:timestamp;default:null" json:"delivered_at,omitempty"`
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
