package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/repositories"
)

type DiscountService interface {
	ValidateDiscount(ctx context.Context, code, userID string, amount int64, planType models.PlanType) (*models.DiscountCode, error)
	CalculateDiscountAmount(amount int64, discount *models.DiscountCode) models.DiscountBreakdown
	RecordDiscountUsage(ctx context.Context, userID, discountCodeID, paymentReference string) (bool, error)

	// Admin operations
	CreateCode(ctx context.Context, code *models.DiscountCode) error
	UpdateCode(ctx context.Context, code *models.DiscountCode) error
	DeleteCode(ctx context.Context, id string) error
	ListCodes(ctx context.Context) ([]models.DiscountCode, error)
}

type discountService struct {
	discountRepo repositories.DiscountRepository
}

func NewDiscountService(discountRepo repositories.DiscountRepository) DiscountService {
	return &discountService{discountRepo: discountRepo}
}

// ValidateDiscount checks a code against its validity window, plan set and
// usage limits. Read-only: nothing is mutated until the payment callback
// records the usage.
func (s *discountService) ValidateDiscount(ctx context.Context, code, userID string, amount int64, planType models.PlanType) (*models.DiscountCode, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	dc, err := s.discountRepo.FindByCode(ctx, code)
	if err != nil {
		if apperrors.Is(err, repositories.ErrDiscountNotFound) {
			return nil, apperrors.ErrDiscountNotFound
		}
		return nil, err
	}
	if !dc.IsActive {
		return nil, apperrors.ErrDiscountNotFound
	}

	now := time.Now()
	if now.Before(dc.ValidFrom) || now.After(dc.ValidUntil) {
		return nil, apperrors.ErrDiscountExpired
	}

	if !planTypeAllowed(dc, planType) {
		return nil, apperrors.ErrPlanMismatch
	}

	if dc.PerUserLimit > 0 {
		used, err := s.discountRepo.CountUserUsage(ctx, userID, dc.ID)
		if err != nil {
			return nil, err
		}
		if used >= int64(dc.PerUserLimit) {
			return nil, apperrors.ErrUsageExceeded
		}
	}

	if dc.GlobalLimit > 0 {
		total, err := s.discountRepo.CountGlobalUsage(ctx, dc.ID)
		if err != nil {
			return nil, err
		}
		if total >= int64(dc.GlobalLimit) {
			return nil, apperrors.ErrUsageExceeded
		}
	}

	return dc, nil
}

// CalculateDiscountAmount computes the breakdown on integer minor units.
// Percentage discounts round half-up; fixed discounts are capped at the
// order amount so the final amount never goes negative.
func (s *discountService) CalculateDiscountAmount(amount int64, discount *models.DiscountCode) models.DiscountBreakdown {
	var discountAmount int64

	switch discount.Kind {
	case models.DiscountKindPercentage:
		discountAmount = int64(math.Floor(float64(amount)*discount.Value/100 + 0.5))
	case models.DiscountKindFixedAmount:
		discountAmount = int64(discount.Value)
	}

	if discountAmount > amount {
		discountAmount = amount
	}
	if discountAmount < 0 {
		discountAmount = 0
	}

	return models.DiscountBreakdown{
		OriginalAmount: amount,
		DiscountAmount: discountAmount,
		FinalAmount:    amount - discountAmount,
	}
}

// RecordDiscountUsage is idempotent: the storage-level unique constraint on
// (user, code, payment reference) absorbs duplicate gateway callbacks.
func (s *discountService) RecordDiscountUsage(ctx context.Context, userID, discountCodeID, paymentReference string) (bool, error) {
	return s.discountRepo.RecordUsage(ctx, &models.DiscountUsage{
		UserID:           userID,
		DiscountCodeID:   discountCodeID,
		PaymentReference: paymentReference,
	})
}

func (s *discountService) CreateCode(ctx context.Context, code *models.DiscountCode) error {
	if err := validateCodeShape(code); err != nil {
		return err
	}
	return s.discountRepo.Create(ctx, code)
}

func (s *discountService) UpdateCode(ctx context.Context, code *models.DiscountCode) error {
	if err := validateCodeShape(code); err != nil {
		return err
	}
	return s.discountRepo.Update(ctx, code)
}

func (s *discountService) DeleteCode(ctx context.Context, id string) error {
	return s.discountRepo.Delete(ctx, id)
}

func (s *discountService) ListCodes(ctx context.Context) ([]models.DiscountCode, error) {
	return s.discountRepo.ListCodes(ctx)
}

// planTypeAllowed reports whether the code's applicable-plan set admits the
// plan. An empty or absent set means any plan.
func planTypeAllowed(dc *models.DiscountCode, planType models.PlanType) bool {
	if len(dc.PlanTypes) == 0 {
		return true
	}
	var plans []models.PlanType
	if err := json.Unmarshal(dc.PlanTypes, &plans); err != nil {
		return false
	}
	if len(plans) == 0 {
		return true
	}
	for _, p := range plans {
		if p == planType {
			return true
		}
	}
	return false
}

func validateCodeShape(code *models.DiscountCode) error {
	switch code.Kind {
	case models.DiscountKindPercentage:
		if code.Value <= 0 || code.Value > 100 {
			return apperrors.NewBadRequestError("Percentage value must be in (0, 100]")
		}
	case models.DiscountKindFixedAmount:
		if code.Value <= 0 {
			return apperrors.NewBadRequestError("Fixed amount value must be positive")
		}
	default:
		return apperrors.NewBadRequestError("Unknown discount kind")
	}
	if !code.ValidUntil.After(code.ValidFrom) {
		return apperrors.NewBadRequestError("Validity window is empty")
	}
	return nil
}
