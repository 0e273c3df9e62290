package services

import (
	"context"
	"time"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/repositories"
)

// Free-plan monthly allowances. -1 means unlimited.
var freePlanLimits = map[string]int{
	models.FeatureResumesDownloaded:     3,
	models.FeatureCoverLettersGenerated: 3,
	models.FeatureEmailsGenerated:       5,
	models.FeatureJobApplications:       10,
	models.FeatureInterviewSessions:     1,
	models.FeatureCoachingSessions:      1,
}

// UsageStatus reports where a user stands against a plan limit.
type UsageStatus struct {
	Feature string `json:"feature"`
	Current int    `json:"current"`
	Limit   int    `json:"limit"` // -1 = unlimited
}

type UsageService interface {
	IncrementUsage(ctx context.Context, userID, feature string) (int, error)
	CheckUsageLimit(ctx context.Context, userID, feature string) (*UsageStatus, error)
}

type usageService struct {
	usageRepo        repositories.UsageRepository
	subscriptionRepo repositories.SubscriptionRepository
}

func NewUsageService(usageRepo repositories.UsageRepository, subscriptionRepo repositories.SubscriptionRepository) UsageService {
	return &usageService{
		usageRepo:        usageRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

// MonthKey buckets usage by calendar month; counters reset implicitly when
// the key rolls over.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func (s *usageService) IncrementUsage(ctx context.Context, userID, feature string) (int, error) {
	count, err := s.usageRepo.Increment(ctx, userID, MonthKey(time.Now()), feature)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUnknownFeature) {
			return 0, apperrors.ErrUnknownFeature
		}
		return 0, err
	}
	return count, nil
}

func (s *usageService) CheckUsageLimit(ctx context.Context, userID, feature string) (*UsageStatus, error) {
	limit, ok := freePlanLimits[feature]
	if !ok {
		return nil, apperrors.ErrUnknownFeature
	}

	// Professional users (including trialing ones) are unlimited.
	sub, err := s.subscriptionRepo.FindByUserID(ctx, userID)
	if err != nil && !apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
		return nil, err
	}
	if sub != nil && sub.PlanType == models.PlanTypeProfessional && sub.IsActive {
		limit = -1
	}

	counter, err := s.usageRepo.Get(ctx, userID, MonthKey(time.Now()))
	if err != nil {
		return nil, err
	}

	return &UsageStatus{
		Feature: feature,
		Current: counter.CounterValue(feature),
		Limit:   limit,
	}, nil
}
