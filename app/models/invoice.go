package models

import "time"

const InvoiceStatusPaid = "paid"

// Invoice records one successfully charged billing cycle of a subscription.
// (subscription_id, external_invoice_id) is unique so redelivered charge events
// collapse onto the same row.
type Invoice struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	SubscriptionID    uint       `gorm:"not null;uniqueIndex:ux_subscription_invoices_sub_invoice,priority:1" json:"subscription_id"`
	ExternalInvoiceID string     `gorm:"column:razorpay_invoice_id;type:varchar(191);not null;uniqueIndex:ux_subscription_invoices_sub_invoice,priority:2" json:"external_invoice_id"`
	ExternalPaymentID string     `gorm:"column:razorpay_payment_id;type:varchar(191);not null;default:'';index" json:"external_payment_id"`
	AmountMinor       int64      `gorm:"not null;default:0" json:"amount_minor"`
	Currency          string     `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	Status            string     `gorm:"type:varchar(16);not null;default:'paid'" json:"status"`
	PaidAt            *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Invoice) TableName() string {
	return "subscription_invoices"
}
