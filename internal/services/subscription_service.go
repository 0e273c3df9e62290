package services

import (
	"context"
	"time"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/config"
	"resumecraft_backend/internal/email"
	"resumecraft_backend/internal/logger"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/repositories"
)

const (
	freePeriodDays     = 30
	expiryLookahead    = 24 * time.Hour
	notifyDedupeWindow = 24 * time.Hour
)

// SweepResult summarizes one batch run. Failures on individual records are
// counted and logged, never fatal to the batch.
type SweepResult struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

type SubscriptionService interface {
	GetUserSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	CreateTrialSubscription(ctx context.Context, userID string) (*models.TrialSubscription, error)
	ActivatePaidSubscription(ctx context.Context, userID string, periodDays int) error
	EnsureFreeSubscription(ctx context.Context, userID string) error

	HandleExpiredTrials(ctx context.Context) (*SweepResult, error)
	ProcessExpiredSubscriptions(ctx context.Context) (*SweepResult, error)
	NotifyExpiringSoon(ctx context.Context) (*SweepResult, error)
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	activityRepo     repositories.ActivityRepository
	emailProvider    email.Provider
}

func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	activityRepo repositories.ActivityRepository,
	emailProvider email.Provider,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		activityRepo:     activityRepo,
		emailProvider:    emailProvider,
	}
}

func (s *subscriptionService) GetUserSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.subscriptionRepo.FindByUserID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.NotFound("Subscription")
		}
		return nil, err
	}
	return sub, nil
}

// CreateTrialSubscription grants the professional plan for the trial window.
// The check-then-insert expresses the one-active-trial invariant; the partial
// unique index on trial_subscriptions enforces it under concurrent requests.
func (s *subscriptionService) CreateTrialSubscription(ctx context.Context, userID string) (*models.TrialSubscription, error) {
	if existing, err := s.subscriptionRepo.FindActiveTrial(ctx, userID); err == nil && existing != nil {
		return nil, apperrors.ErrTrialAlreadyActive
	} else if err != nil && !apperrors.Is(err, repositories.ErrTrialNotFound) {
		return nil, err
	}

	now := time.Now()
	trial := &models.TrialSubscription{
		UserID:     userID,
		TrialStart: now,
		TrialEnd:   now.AddDate(0, 0, config.GetConfig().Billing.TrialDays),
		Status:     models.TrialStatusActive,
	}
	if err := s.subscriptionRepo.CreateTrial(ctx, trial); err != nil {
		return nil, apperrors.ErrTrialAlreadyActive.WithError(err)
	}

	sub := &models.Subscription{
		UserID:             userID,
		PlanType:           models.PlanTypeProfessional,
		Status:             models.SubscriptionStatusTrialing,
		CurrentPeriodStart: trial.TrialStart,
		CurrentPeriodEnd:   trial.TrialEnd,
		IsActive:           true,
	}
	if err := s.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	// Best effort, own error boundary.
	go func() {
		if err := s.activityRepo.Log(context.Background(), userID, models.EventTrialStarted, map[string]interface{}{
			"trial_end": trial.TrialEnd,
		}); err != nil {
			logger.Error("failed to log trial start", "user_id", userID, "error", err)
		}
	}()

	return trial, nil
}

// ActivatePaidSubscription starts (or extends) a paid professional period,
// converting any active trial.
func (s *subscriptionService) ActivatePaidSubscription(ctx context.Context, userID string, periodDays int) error {
	now := time.Now()
	sub := &models.Subscription{
		UserID:             userID,
		PlanType:           models.PlanTypeProfessional,
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, periodDays),
		IsActive:           true,
	}
	if err := s.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return err
	}

	if trial, err := s.subscriptionRepo.FindActiveTrial(ctx, userID); err == nil {
		if err := s.subscriptionRepo.UpdateTrialStatus(ctx, trial.ID, models.TrialStatusConverted); err != nil {
			logger.CtxWarn(ctx, "failed to convert trial", "user_id", userID, "error", err)
		}
	}
	return nil
}

// EnsureFreeSubscription seeds a free-plan row for a fresh signup.
func (s *subscriptionService) EnsureFreeSubscription(ctx context.Context, userID string) error {
	now := time.Now()
	return s.subscriptionRepo.Upsert(ctx, &models.Subscription{
		UserID:             userID,
		PlanType:           models.PlanTypeFree,
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, freePeriodDays),
		IsActive:           true,
	})
}

// HandleExpiredTrials transitions overdue trials to expired and downgrades
// the linked subscriptions. Safe to re-run: expired trials are not selected
// again and Downgrade skips rows already on the free plan.
func (s *subscriptionService) HandleExpiredTrials(ctx context.Context) (*SweepResult, error) {
	trials, err := s.subscriptionRepo.FindExpiredActiveTrials(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	now := time.Now()
	for _, trial := range trials {
		// Downgrade before flipping the trial status: a failed downgrade
		// leaves the trial active, so the next sweep picks it up again.
		if err := s.subscriptionRepo.Downgrade(ctx, trial.UserID, now, now.AddDate(0, 0, freePeriodDays)); err != nil {
			logger.CtxError(ctx, "failed to downgrade after trial", "user_id", trial.UserID, "error", err)
			result.Errors++
			continue
		}
		if err := s.subscriptionRepo.UpdateTrialStatus(ctx, trial.ID, models.TrialStatusExpired); err != nil {
			logger.CtxError(ctx, "failed to expire trial", "trial_id", trial.ID, "error", err)
			result.Errors++
			continue
		}
		if err := s.activityRepo.Log(ctx, trial.UserID, models.EventTrialExpired, map[string]interface{}{
			"trial_id": trial.ID,
		}); err != nil {
			logger.CtxWarn(ctx, "failed to log trial expiry", "user_id", trial.UserID, "error", err)
		}
		s.notifyTrialExpired(ctx, trial.UserID)
		result.Processed++
	}
	return result, nil
}

// ProcessExpiredSubscriptions downgrades paid subscriptions whose period has
// lapsed and opens a fresh 30-day free window.
func (s *subscriptionService) ProcessExpiredSubscriptions(ctx context.Context) (*SweepResult, error) {
	subs, err := s.subscriptionRepo.FindExpired(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	now := time.Now()
	for _, sub := range subs {
		if err := s.subscriptionRepo.Downgrade(ctx, sub.UserID, now, now.AddDate(0, 0, freePeriodDays)); err != nil {
			logger.CtxError(ctx, "failed to downgrade expired subscription", "user_id", sub.UserID, "error", err)
			result.Errors++
			continue
		}
		if err := s.activityRepo.Log(ctx, sub.UserID, models.EventSubscriptionExpired, map[string]interface{}{
			"subscription_id": sub.ID,
			"period_end":      sub.CurrentPeriodEnd,
		}); err != nil {
			logger.CtxWarn(ctx, "failed to log subscription expiry", "user_id", sub.UserID, "error", err)
		}
		result.Processed++
	}
	return result, nil
}

// NotifyExpiringSoon emails users whose period ends within the next 24h.
// LastNotifiedAt caps it at one notification per subscription per day.
func (s *subscriptionService) NotifyExpiringSoon(ctx context.Context) (*SweepResult, error) {
	subs, err := s.subscriptionRepo.FindExpiringWithin(ctx, expiryLookahead)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	now := time.Now()
	for _, sub := range subs {
		if sub.LastNotifiedAt != nil && now.Sub(*sub.LastNotifiedAt) < notifyDedupeWindow {
			continue
		}

		user, err := s.userRepo.FindByID(ctx, sub.UserID)
		if err != nil {
			logger.CtxError(ctx, "failed to load user for expiry notice", "user_id", sub.UserID, "error", err)
			result.Errors++
			continue
		}

		hoursLeft := int(time.Until(sub.CurrentPeriodEnd).Hours())
		if err := s.emailProvider.SendSubscriptionExpiring(user.Email, user.Name, hoursLeft); err != nil {
			logger.CtxError(ctx, "failed to send expiry notice", "user_id", sub.UserID, "error", err)
			result.Errors++
			continue
		}
		if err := s.subscriptionRepo.SetLastNotified(ctx, sub.ID, now); err != nil {
			logger.CtxWarn(ctx, "failed to mark notification sent", "subscription_id", sub.ID, "error", err)
		}
		result.Processed++
	}
	return result, nil
}

func (s *subscriptionService) notifyTrialExpired(ctx context.Context, userID string) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logger.CtxWarn(ctx, "failed to load user for trial-expired email", "user_id", userID, "error", err)
		return
	}
	if err := s.emailProvider.SendTrialExpired(user.Email, user.Name); err != nil {
		logger.CtxWarn(ctx, "failed to send trial-expired email", "user_id", userID, "error", err)
	}
}
