package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/config"
	"resumecraft_backend/internal/logger"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/payment"
	"resumecraft_backend/internal/repositories"
)

// PaymentInitResult is what the client needs to complete hosted checkout.
type PaymentInitResult struct {
	AuthorizationURL string                   `json:"authorization_url"`
	Reference        string                   `json:"reference"`
	Breakdown        models.DiscountBreakdown `json:"breakdown"`
}

type BillingService interface {
	InitializePayment(ctx context.Context, userID, discountCode string) (*PaymentInitResult, error)
	HandlePaymentCallback(ctx context.Context, reference string) error
}

type billingService struct {
	subscriptionRepo    repositories.SubscriptionRepository
	userRepo            repositories.UserRepository
	activityRepo        repositories.ActivityRepository
	discountService     DiscountService
	subscriptionService SubscriptionService
	gateway             *payment.Client
}

func NewBillingService(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	activityRepo repositories.ActivityRepository,
	discountService DiscountService,
	subscriptionService SubscriptionService,
	gateway *payment.Client,
) BillingService {
	return &billingService{
		subscriptionRepo:    subscriptionRepo,
		userRepo:            userRepo,
		activityRepo:        activityRepo,
		discountService:     discountService,
		subscriptionService: subscriptionService,
		gateway:             gateway,
	}
}

// InitializePayment prices the professional plan, applies an optional
// discount code, and opens a hosted-checkout session. Nothing is redeemed
// here; usage is recorded only when the callback confirms payment.
func (s *billingService) InitializePayment(ctx context.Context, userID, discountCode string) (*PaymentInitResult, error) {
	cfg := config.GetConfig()

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	amount := cfg.Billing.ProfessionalPrice
	breakdown := models.DiscountBreakdown{OriginalAmount: amount, FinalAmount: amount}

	var discountID *string
	if discountCode != "" {
		dc, err := s.discountService.ValidateDiscount(ctx, discountCode, userID, amount, models.PlanTypeProfessional)
		if err != nil {
			return nil, err
		}
		breakdown = s.discountService.CalculateDiscountAmount(amount, dc)
		discountID = &dc.ID
	}

	reference := fmt.Sprintf("rc_%s", uuid.NewString())
	initResp, err := s.gateway.InitializeTransaction(ctx, &payment.InitializeRequest{
		Email:       user.Email,
		Amount:      breakdown.FinalAmount,
		Currency:    cfg.Payment.Currency,
		Reference:   reference,
		CallbackURL: cfg.Payment.CallbackURL,
		Metadata: map[string]interface{}{
			"user_id":          userID,
			"discount_code_id": discountID,
		},
	})
	if err != nil {
		return nil, apperrors.UpstreamError("payment gateway", err)
	}

	if err := s.subscriptionRepo.CreatePayment(ctx, &models.PaymentTransaction{
		UserID:         userID,
		Amount:         breakdown.FinalAmount,
		Currency:       cfg.Payment.Currency,
		Status:         models.PaymentStatusPending,
		Reference:      initResp.Reference,
		DiscountCodeID: discountID,
	}); err != nil {
		return nil, err
	}

	return &PaymentInitResult{
		AuthorizationURL: initResp.AuthorizationURL,
		Reference:        initResp.Reference,
		Breakdown:        breakdown,
	}, nil
}

// HandlePaymentCallback confirms a payment and activates the subscription.
// Re-delivered callbacks are harmless: the payment flips to paid once and
// discount usage recording is idempotent at the storage layer.
func (s *billingService) HandlePaymentCallback(ctx context.Context, reference string) error {
	cfg := config.GetConfig()

	pt, err := s.subscriptionRepo.FindPaymentByReference(ctx, reference)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPaymentNotFound) {
			return apperrors.NotFound("Payment")
		}
		return err
	}

	paidAt := time.Now()
	if err := s.subscriptionRepo.UpdatePaymentStatus(ctx, reference, models.PaymentStatusPaid, &paidAt); err != nil {
		return err
	}

	if pt.DiscountCodeID != nil {
		inserted, err := s.discountService.RecordDiscountUsage(ctx, pt.UserID, *pt.DiscountCodeID, reference)
		if err != nil {
			logger.CtxError(ctx, "failed to record discount usage", "reference", reference, "error", err)
		} else if !inserted {
			logger.CtxInfo(ctx, "duplicate callback, discount usage already recorded", "reference", reference)
		}
	}

	if err := s.subscriptionService.ActivatePaidSubscription(ctx, pt.UserID, cfg.Billing.PeriodDays); err != nil {
		return err
	}

	// Best effort, own error boundary.
	go func() {
		if err := s.activityRepo.Log(context.Background(), pt.UserID, models.EventPaymentCompleted, map[string]interface{}{
			"reference": reference,
			"amount":    pt.Amount,
		}); err != nil {
			logger.Error("failed to log payment", "reference", reference, "error", err)
		}
	}()

	return nil
}
