package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumecraft_backend/internal/models"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrTrialNotFound        = errors.New("trial subscription not found")
	ErrPaymentNotFound      = errors.New("payment transaction not found")
)

type SubscriptionRepository interface {
	// Subscription operations
	FindByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	Upsert(ctx context.Context, sub *models.Subscription) error
	Downgrade(ctx context.Context, userID string, periodStart, periodEnd time.Time) error
	FindExpired(ctx context.Context) ([]models.Subscription, error)
	FindExpiringWithin(ctx context.Context, within time.Duration) ([]models.Subscription, error)
	SetLastNotified(ctx context.Context, subscriptionID string, at time.Time) error

	// Trial operations
	CreateTrial(ctx context.Context, trial *models.TrialSubscription) error
	FindActiveTrial(ctx context.Context, userID string) (*models.TrialSubscription, error)
	FindExpiredActiveTrials(ctx context.Context) ([]models.TrialSubscription, error)
	UpdateTrialStatus(ctx context.Context, trialID string, status models.TrialStatus) error

	// Payment operations
	CreatePayment(ctx context.Context, payment *models.PaymentTransaction) error
	FindPaymentByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error)
	UpdatePaymentStatus(ctx context.Context, reference string, status models.PaymentStatus, paidAt *time.Time) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) FindByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).First(&sub, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert writes the subscription keyed by user_id, so concurrent signups and
// trial starts cannot create duplicate rows.
func (r *subscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_type", "status", "current_period_start", "current_period_end", "is_active", "updated_at",
		}),
	}).Create(sub).Error
}

// Downgrade moves a user to the free plan with a fresh period window. A row
// already on the free plan is left untouched, which keeps sweeps idempotent.
func (r *subscriptionRepository) Downgrade(ctx context.Context, userID string, periodStart, periodEnd time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND plan_type <> ?", userID, models.PlanTypeFree).
		Updates(map[string]interface{}{
			"plan_type":            models.PlanTypeFree,
			"status":               models.SubscriptionStatusActive,
			"current_period_start": periodStart,
			"current_period_end":   periodEnd,
			"updated_at":           time.Now(),
		}).Error
}

func (r *subscriptionRepository) FindExpired(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND plan_type = ? AND current_period_end < ?",
			models.SubscriptionStatusActive, models.PlanTypeProfessional, time.Now()).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) FindExpiringWithin(ctx context.Context, within time.Duration) ([]models.Subscription, error) {
	now := time.Now()
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND current_period_end BETWEEN ? AND ?",
			models.SubscriptionStatusActive, now, now.Add(within)).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) SetLastNotified(ctx context.Context, subscriptionID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		Update("last_notified_at", at).Error
}

func (r *subscriptionRepository) CreateTrial(ctx context.Context, trial *models.TrialSubscription) error {
	return r.db.WithContext(ctx).Create(trial).Error
}

func (r *subscriptionRepository) FindActiveTrial(ctx context.Context, userID string) (*models.TrialSubscription, error) {
	var trial models.TrialSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.TrialStatusActive).
		First(&trial).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTrialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trial, nil
}

func (r *subscriptionRepository) FindExpiredActiveTrials(ctx context.Context) ([]models.TrialSubscription, error) {
	var trials []models.TrialSubscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND trial_end < ?", models.TrialStatusActive, time.Now()).
		Find(&trials).Error
	return trials, err
}

func (r *subscriptionRepository) UpdateTrialStatus(ctx context.Context, trialID string, status models.TrialStatus) error {
	return r.db.WithContext(ctx).Model(&models.TrialSubscription{}).
		Where("id = ?", trialID).
		Update("status", status).Error
}

func (r *subscriptionRepository) CreatePayment(ctx context.Context, payment *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *subscriptionRepository) FindPaymentByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := r.db.WithContext(ctx).First(&payment, "reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *subscriptionRepository) UpdatePaymentStatus(ctx context.Context, reference string, status models.PaymentStatus, paidAt *time.Time) error {
	return r.db.WithContext(ctx).Model(&models.PaymentTransaction{}).
		Where("reference = ?", reference).
		Updates(map[string]interface{}{"status": status, "paid_at": paidAt}).Error
}
