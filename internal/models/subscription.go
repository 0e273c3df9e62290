package models

import "time"

// Subscription is the single billing record per user. When Status is active
// and CurrentPeriodEnd is in the past the record is stale; the worker sweep
// reconciles it before it can be trusted.
type Subscription struct {
	BaseModel
	UserID             string             `gorm:"not null;uniqueIndex" json:"user_id"`
	PlanType           PlanType           `gorm:"type:varchar(20);default:'free'" json:"plan_type"`
	Status             SubscriptionStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	IsActive           bool               `gorm:"default:true" json:"is_active"`
	LastNotifiedAt     *time.Time         `json:"last_notified_at,omitempty"`
}

// TrialSubscription is a time-boxed grant of the professional plan.
// TrialEnd is always TrialStart plus the fixed trial duration, and a user
// has at most one active trial (partial unique index, see database package).
type TrialSubscription struct {
	BaseModel
	UserID     string      `gorm:"not null;index" json:"user_id"`
	TrialStart time.Time   `gorm:"not null" json:"trial_start"`
	TrialEnd   time.Time   `gorm:"not null" json:"trial_end"`
	Status     TrialStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
}

type PaymentTransaction struct {
	BaseModel
	UserID         string        `gorm:"not null;index" json:"user_id"`
	Amount         int64         `gorm:"not null" json:"amount"` // minor units
	Currency       string        `gorm:"default:'USD'" json:"currency"`
	Status         PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Reference      string        `gorm:"uniqueIndex;not null" json:"reference"`
	DiscountCodeID *string       `json:"discount_code_id,omitempty"`
	PaidAt         *time.Time    `json:"paid_at,omitempty"`
}
