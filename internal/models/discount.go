package models

import (
	"time"

	"gorm.io/datatypes"
)

// DiscountCode describes a redeemable code. Value is a percent in (0,100]
// for percentage codes and an amount in minor currency units for fixed codes.
type DiscountCode struct {
	BaseModel
	Code          string         `gorm:"uniqueIndex;not null" json:"code"`
	Kind          DiscountKind   `gorm:"type:varchar(20);not null" json:"kind"`
	Value         float64        `gorm:"not null" json:"value"`
	PlanTypes     datatypes.JSON `gorm:"type:jsonb" json:"plan_types"` // ["professional"]; empty = any plan
	PerUserLimit  int            `gorm:"default:1" json:"per_user_limit"`
	GlobalLimit   int            `gorm:"default:0" json:"global_limit"` // 0 = unlimited
	ValidFrom     time.Time      `json:"valid_from"`
	ValidUntil    time.Time      `json:"valid_until"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	TimesRedeemed int            `gorm:"default:0" json:"times_redeemed"`
}

// DiscountUsage links a redemption to a user and a payment. The composite
// unique index makes usage recording idempotent under retried callbacks.
type DiscountUsage struct {
	BaseModel
	UserID           string    `gorm:"not null;index;uniqueIndex:idx_discount_usage_once" json:"user_id"`
	DiscountCodeID   string    `gorm:"not null;index;uniqueIndex:idx_discount_usage_once" json:"discount_code_id"`
	PaymentReference string    `gorm:"not null;uniqueIndex:idx_discount_usage_once" json:"payment_reference"`
	UsedAt           time.Time `gorm:"default:now()" json:"used_at"`
}

// DiscountBreakdown is the result of applying a code to an order amount.
// All amounts are integer minor units.
type DiscountBreakdown struct {
	OriginalAmount int64 `json:"original_amount"`
	DiscountAmount int64 `json:"discount_amount"`
	FinalAmount    int64 `json:"final_amount"`
}
