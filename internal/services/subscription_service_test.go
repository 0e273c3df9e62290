package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/config"
	"resumecraft_backend/internal/email"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/repositories"
)

type fakeSubscriptionRepo struct {
	subs              map[string]*models.Subscription
	trials            map[string]*models.TrialSubscription
	payments          map[string]*models.PaymentTransaction
	failTrialIDs      map[string]bool
	failDowngradeOnce map[string]bool
	lastNotified      map[string]time.Time
	downgraded        []string
	trialSequence     int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{
		subs:              map[string]*models.Subscription{},
		trials:            map[string]*models.TrialSubscription{},
		payments:          map[string]*models.PaymentTransaction{},
		failTrialIDs:      map[string]bool{},
		failDowngradeOnce: map[string]bool{},
		lastNotified:      map[string]time.Time{},
	}
}

func (f *fakeSubscriptionRepo) FindByUserID(_ context.Context, userID string) (*models.Subscription, error) {
	sub, ok := f.subs[userID]
	if !ok {
		return nil, repositories.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (f *fakeSubscriptionRepo) Upsert(_ context.Context, sub *models.Subscription) error {
	f.subs[sub.UserID] = sub
	return nil
}

func (f *fakeSubscriptionRepo) Downgrade(_ context.Context, userID string, start, end time.Time) error {
	if f.failDowngradeOnce[userID] {
		delete(f.failDowngradeOnce, userID)
		return errors.New("storage unavailable")
	}
	f.downgraded = append(f.downgraded, userID)
	if sub, ok := f.subs[userID]; ok && sub.PlanType != models.PlanTypeFree {
		sub.PlanType = models.PlanTypeFree
		sub.Status = models.SubscriptionStatusActive
		sub.CurrentPeriodStart = start
		sub.CurrentPeriodEnd = end
	}
	return nil
}

func (f *fakeSubscriptionRepo) FindExpired(_ context.Context) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range f.subs {
		if sub.Status == models.SubscriptionStatusActive &&
			sub.PlanType == models.PlanTypeProfessional &&
			sub.CurrentPeriodEnd.Before(time.Now()) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) FindExpiringWithin(_ context.Context, within time.Duration) ([]models.Subscription, error) {
	now := time.Now()
	var out []models.Subscription
	for _, sub := range f.subs {
		if sub.Status == models.SubscriptionStatusActive &&
			sub.CurrentPeriodEnd.After(now) &&
			sub.CurrentPeriodEnd.Before(now.Add(within)) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) SetLastNotified(_ context.Context, subscriptionID string, at time.Time) error {
	f.lastNotified[subscriptionID] = at
	for _, sub := range f.subs {
		if sub.ID == subscriptionID {
			t := at
			sub.LastNotifiedAt = &t
		}
	}
	return nil
}

func (f *fakeSubscriptionRepo) CreateTrial(_ context.Context, trial *models.TrialSubscription) error {
	f.trialSequence++
	if trial.ID == "" {
		trial.ID = "trial-" + string(rune('0'+f.trialSequence))
	}
	f.trials[trial.ID] = trial
	return nil
}

func (f *fakeSubscriptionRepo) FindActiveTrial(_ context.Context, userID string) (*models.TrialSubscription, error) {
	for _, trial := range f.trials {
		if trial.UserID == userID && trial.Status == models.TrialStatusActive {
			return trial, nil
		}
	}
	return nil, repositories.ErrTrialNotFound
}

func (f *fakeSubscriptionRepo) FindExpiredActiveTrials(_ context.Context) ([]models.TrialSubscription, error) {
	var out []models.TrialSubscription
	for _, trial := range f.trials {
		if trial.Status == models.TrialStatusActive && trial.TrialEnd.Before(time.Now()) {
			out = append(out, *trial)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) UpdateTrialStatus(_ context.Context, trialID string, status models.TrialStatus) error {
	if f.failTrialIDs[trialID] {
		return errors.New("storage unavailable")
	}
	if trial, ok := f.trials[trialID]; ok {
		trial.Status = status
	}
	return nil
}

func (f *fakeSubscriptionRepo) CreatePayment(_ context.Context, payment *models.PaymentTransaction) error {
	f.payments[payment.Reference] = payment
	return nil
}

func (f *fakeSubscriptionRepo) FindPaymentByReference(_ context.Context, reference string) (*models.PaymentTransaction, error) {
	p, ok := f.payments[reference]
	if !ok {
		return nil, repositories.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakeSubscriptionRepo) UpdatePaymentStatus(_ context.Context, reference string, status models.PaymentStatus, paidAt *time.Time) error {
	if p, ok := f.payments[reference]; ok {
		p.Status = status
		p.PaidAt = paidAt
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) CreateRefreshToken(_ context.Context, _ *models.RefreshToken) error { return nil }
func (f *fakeUserRepo) FindRefreshToken(_ context.Context, _ string) (*models.RefreshToken, error) {
	return nil, repositories.ErrRefreshTokenNotFound
}
func (f *fakeUserRepo) DeleteRefreshToken(_ context.Context, _ string) error { return nil }

type fakeActivityRepo struct {
	mu     sync.Mutex
	events []string
}

// Log is called from fire-and-forget goroutines, so the fake locks.
func (f *fakeActivityRepo) Log(_ context.Context, _, eventType string, _ map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeActivityRepo) CountByUserAndEvent(_ context.Context, _, _ string) (int64, error) {
	return 0, nil
}

type fakeEmailProvider struct {
	expiringSent []string
	trialExpired []string
	failSend     bool
}

func (f *fakeEmailProvider) Send(_ *email.Message) error { return nil }

func (f *fakeEmailProvider) SendWelcome(_, _ string) error { return nil }

func (f *fakeEmailProvider) SendTrialExpired(to, _ string) error {
	f.trialExpired = append(f.trialExpired, to)
	return nil
}

func (f *fakeEmailProvider) SendSubscriptionExpiring(to, _ string, _ int) error {
	if f.failSend {
		return errors.New("smtp down")
	}
	f.expiringSent = append(f.expiringSent, to)
	return nil
}

func (f *fakeEmailProvider) Close() error { return nil }

func newSubscriptionFixture() (*fakeSubscriptionRepo, *fakeUserRepo, *fakeActivityRepo, *fakeEmailProvider, SubscriptionService) {
	config.AppConfig = &config.Config{}
	config.AppConfig.Billing.TrialDays = 7

	subRepo := newFakeSubscriptionRepo()
	userRepo := &fakeUserRepo{users: map[string]*models.User{}}
	activityRepo := &fakeActivityRepo{}
	emailProvider := &fakeEmailProvider{}
	svc := NewSubscriptionService(subRepo, userRepo, activityRepo, emailProvider)
	return subRepo, userRepo, activityRepo, emailProvider, svc
}

func TestCreateTrialSubscription(t *testing.T) {
	subRepo, _, _, _, svc := newSubscriptionFixture()

	trial, err := svc.CreateTrialSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.TrialStatusActive, trial.Status)
	assert.WithinDuration(t, trial.TrialStart.AddDate(0, 0, 7), trial.TrialEnd, time.Second)

	// The linked subscription is professional and trialing.
	sub := subRepo.subs["user-1"]
	require.NotNil(t, sub)
	assert.Equal(t, models.PlanTypeProfessional, sub.PlanType)
	assert.Equal(t, models.SubscriptionStatusTrialing, sub.Status)
	assert.True(t, sub.IsActive)
}

func TestCreateTrialSubscription_ConfiguredLength(t *testing.T) {
	_, _, _, _, svc := newSubscriptionFixture()
	config.AppConfig.Billing.TrialDays = 14

	trial, err := svc.CreateTrialSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, trial.TrialStart.AddDate(0, 0, 14), trial.TrialEnd, time.Second)
}

func TestCreateTrialSubscription_SecondTrialRejected(t *testing.T) {
	_, _, _, _, svc := newSubscriptionFixture()

	_, err := svc.CreateTrialSubscription(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = svc.CreateTrialSubscription(context.Background(), "user-1")
	assert.ErrorIs(t, err, apperrors.ErrTrialAlreadyActive)
}

func TestActivatePaidSubscription_ConvertsTrial(t *testing.T) {
	subRepo, _, _, _, svc := newSubscriptionFixture()

	trial, err := svc.CreateTrialSubscription(context.Background(), "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.ActivatePaidSubscription(context.Background(), "user-1", 30))

	assert.Equal(t, models.TrialStatusConverted, subRepo.trials[trial.ID].Status)
	sub := subRepo.subs["user-1"]
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, models.PlanTypeProfessional, sub.PlanType)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), sub.CurrentPeriodEnd, time.Minute)
}

func TestHandleExpiredTrials_DowngradesAndNotifies(t *testing.T) {
	subRepo, userRepo, activityRepo, emailProvider, svc := newSubscriptionFixture()

	userRepo.users["user-1"] = &models.User{Email: "one@example.com", Name: "One"}
	userRepo.users["user-1"].ID = "user-1"

	trial := &models.TrialSubscription{
		UserID:     "user-1",
		TrialStart: time.Now().Add(-8 * 24 * time.Hour),
		TrialEnd:   time.Now().Add(-24 * time.Hour),
		Status:     models.TrialStatusActive,
	}
	require.NoError(t, subRepo.CreateTrial(context.Background(), trial))
	subRepo.subs["user-1"] = &models.Subscription{
		UserID:   "user-1",
		PlanType: models.PlanTypeProfessional,
		Status:   models.SubscriptionStatusTrialing,
		IsActive: true,
	}

	result, err := svc.HandleExpiredTrials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Errors)

	assert.Equal(t, models.TrialStatusExpired, subRepo.trials[trial.ID].Status)
	assert.Equal(t, models.PlanTypeFree, subRepo.subs["user-1"].PlanType)
	assert.Contains(t, activityRepo.events, models.EventTrialExpired)
	assert.Contains(t, emailProvider.trialExpired, "one@example.com")

	// Second sweep finds nothing: expired trials are not selected again.
	result, err = svc.HandleExpiredTrials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
}

func TestHandleExpiredTrials_ErrorIsolation(t *testing.T) {
	subRepo, _, _, _, svc := newSubscriptionFixture()

	bad := &models.TrialSubscription{
		UserID:   "user-bad",
		TrialEnd: time.Now().Add(-time.Hour),
		Status:   models.TrialStatusActive,
	}
	good := &models.TrialSubscription{
		UserID:   "user-good",
		TrialEnd: time.Now().Add(-time.Hour),
		Status:   models.TrialStatusActive,
	}
	require.NoError(t, subRepo.CreateTrial(context.Background(), bad))
	require.NoError(t, subRepo.CreateTrial(context.Background(), good))
	subRepo.failTrialIDs[bad.ID] = true

	result, err := svc.HandleExpiredTrials(context.Background())
	require.NoError(t, err)

	// One record fails, the other is still processed.
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, models.TrialStatusExpired, subRepo.trials[good.ID].Status)
	assert.Equal(t, models.TrialStatusActive, subRepo.trials[bad.ID].Status)
}

func TestHandleExpiredTrials_DowngradeRetriedNextSweep(t *testing.T) {
	subRepo, _, _, _, svc := newSubscriptionFixture()

	trial := &models.TrialSubscription{
		UserID:   "user-1",
		TrialEnd: time.Now().Add(-time.Hour),
		Status:   models.TrialStatusActive,
	}
	require.NoError(t, subRepo.CreateTrial(context.Background(), trial))
	subRepo.subs["user-1"] = &models.Subscription{
		UserID:   "user-1",
		PlanType: models.PlanTypeProfessional,
		Status:   models.SubscriptionStatusTrialing,
		IsActive: true,
	}
	subRepo.failDowngradeOnce["user-1"] = true

	// The downgrade fails transiently: the trial must stay selectable.
	result, err := svc.HandleExpiredTrials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, models.TrialStatusActive, subRepo.trials[trial.ID].Status)
	assert.Equal(t, models.PlanTypeProfessional, subRepo.subs["user-1"].PlanType)

	// The next sweep completes the downgrade.
	result, err = svc.HandleExpiredTrials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, models.TrialStatusExpired, subRepo.trials[trial.ID].Status)
	assert.Equal(t, models.PlanTypeFree, subRepo.subs["user-1"].PlanType)
}

func TestProcessExpiredSubscriptions(t *testing.T) {
	subRepo, _, activityRepo, _, svc := newSubscriptionFixture()

	sub := &models.Subscription{
		UserID:           "user-1",
		PlanType:         models.PlanTypeProfessional,
		Status:           models.SubscriptionStatusActive,
		CurrentPeriodEnd: time.Now().Add(-time.Hour),
		IsActive:         true,
	}
	sub.ID = "sub-1"
	subRepo.subs["user-1"] = sub

	result, err := svc.ProcessExpiredSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, models.PlanTypeFree, subRepo.subs["user-1"].PlanType)
	assert.Contains(t, activityRepo.events, models.EventSubscriptionExpired)
}

func TestNotifyExpiringSoon_DedupesWithin24h(t *testing.T) {
	subRepo, userRepo, _, emailProvider, svc := newSubscriptionFixture()

	userRepo.users["user-1"] = &models.User{Email: "one@example.com", Name: "One"}
	userRepo.users["user-1"].ID = "user-1"

	sub := &models.Subscription{
		UserID:           "user-1",
		PlanType:         models.PlanTypeProfessional,
		Status:           models.SubscriptionStatusActive,
		CurrentPeriodEnd: time.Now().Add(12 * time.Hour),
		IsActive:         true,
	}
	sub.ID = "sub-1"
	subRepo.subs["user-1"] = sub

	result, err := svc.NotifyExpiringSoon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Len(t, emailProvider.expiringSent, 1)

	// A second run within the dedupe window sends nothing.
	result, err = svc.NotifyExpiringSoon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Len(t, emailProvider.expiringSent, 1)
}

func TestNotifyExpiringSoon_SendFailureCounted(t *testing.T) {
	subRepo, userRepo, _, emailProvider, svc := newSubscriptionFixture()
	emailProvider.failSend = true

	userRepo.users["user-1"] = &models.User{Email: "one@example.com", Name: "One"}
	userRepo.users["user-1"].ID = "user-1"

	sub := &models.Subscription{
		UserID:           "user-1",
		Status:           models.SubscriptionStatusActive,
		CurrentPeriodEnd: time.Now().Add(12 * time.Hour),
	}
	sub.ID = "sub-1"
	subRepo.subs["user-1"] = sub

	result, err := svc.NotifyExpiringSoon(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Errors)

	// Not marked notified, so the next sweep retries.
	assert.Nil(t, subRepo.subs["user-1"].LastNotifiedAt)
}
