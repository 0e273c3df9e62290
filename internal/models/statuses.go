package models

type UserRole string
type PlanType string
type SubscriptionStatus string
type TrialStatus string
type PaymentStatus string
type DiscountKind string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"

	PlanTypeFree         PlanType = "free"
	PlanTypeProfessional PlanType = "professional"

	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"

	TrialStatusActive    TrialStatus = "active"
	TrialStatusExpired   TrialStatus = "expired"
	TrialStatusConverted TrialStatus = "converted"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"

	DiscountKindPercentage  DiscountKind = "percentage"
	DiscountKindFixedAmount DiscountKind = "fixed_amount"
)
