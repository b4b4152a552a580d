package models

import "time"

// SubscriptionStatus is the store's canonical recurring-billing state.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCharged   SubscriptionStatus = "charged"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusCompleted SubscriptionStatus = "completed"
	SubscriptionStatusHalted    SubscriptionStatus = "halted"
)

// Subscription mirrors a recurring-billing agreement the store created with the
// payment provider. Rows are only ever transitioned, never deleted.
type Subscription struct {
	ID                     uint               `gorm:"primaryKey" json:"id"`
	UserID                 uint               `gorm:"not null;default:0;index" json:"user_id"`
	PlanID                 uint               `gorm:"not null;default:0;index" json:"plan_id"`
	ExternalSubscriptionID string             `gorm:"column:razorpay_subscription_id;type:varchar(191);not null;uniqueIndex:ux_subscriptions_external_id" json:"external_subscription_id"`
	Status                 SubscriptionStatus `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	CurrentStart           *time.Time         `gorm:"type:timestamp;default:null" json:"current_start,omitempty"`
	CurrentEnd             *time.Time         `gorm:"type:timestamp;default:null" json:"current_end,omitempty"`
	PaidCount              int                `gorm:"not null;default:0" json:"paid_count"`
	RemainingCount         *int               `gorm:"default:null" json:"remaining_count,omitempty"`
	PlanAmountMinor        int64              `gorm:"not null;default:0" json:"plan_amount_minor"`
	Currency               string             `gorm:"type:varchar(8);not null;default:''" json:"currency"`
	CreatedAt              time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}
