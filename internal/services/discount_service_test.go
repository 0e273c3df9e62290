package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/models"
	"resumecraft_backend/internal/repositories"
)

type fakeDiscountRepo struct {
	codes       map[string]*models.DiscountCode
	userUsage   map[string]int64
	globalUsage map[string]int64
	recorded    map[string]bool
}

func newFakeDiscountRepo() *fakeDiscountRepo {
	return &fakeDiscountRepo{
		codes:       map[string]*models.DiscountCode{},
		userUsage:   map[string]int64{},
		globalUsage: map[string]int64{},
		recorded:    map[string]bool{},
	}
}

func (f *fakeDiscountRepo) Create(_ context.Context, code *models.DiscountCode) error {
	f.codes[code.Code] = code
	return nil
}

func (f *fakeDiscountRepo) Update(_ context.Context, code *models.DiscountCode) error {
	f.codes[code.Code] = code
	return nil
}

func (f *fakeDiscountRepo) Delete(_ context.Context, id string) error {
	for k, v := range f.codes {
		if v.ID == id {
			delete(f.codes, k)
		}
	}
	return nil
}

func (f *fakeDiscountRepo) FindByID(_ context.Context, id string) (*models.DiscountCode, error) {
	for _, v := range f.codes {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, repositories.ErrDiscountNotFound
}

func (f *fakeDiscountRepo) FindByCode(_ context.Context, code string) (*models.DiscountCode, error) {
	dc, ok := f.codes[code]
	if !ok {
		return nil, repositories.ErrDiscountNotFound
	}
	return dc, nil
}

func (f *fakeDiscountRepo) ListCodes(_ context.Context) ([]models.DiscountCode, error) {
	var out []models.DiscountCode
	for _, v := range f.codes {
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeDiscountRepo) CountUserUsage(_ context.Context, userID, discountCodeID string) (int64, error) {
	return f.userUsage[userID+"|"+discountCodeID], nil
}

func (f *fakeDiscountRepo) CountGlobalUsage(_ context.Context, discountCodeID string) (int64, error) {
	return f.globalUsage[discountCodeID], nil
}

func (f *fakeDiscountRepo) RecordUsage(_ context.Context, usage *models.DiscountUsage) (bool, error) {
	key := usage.UserID + "|" + usage.DiscountCodeID + "|" + usage.PaymentReference
	if f.recorded[key] {
		return false, nil
	}
	f.recorded[key] = true
	f.userUsage[usage.UserID+"|"+usage.DiscountCodeID]++
	f.globalUsage[usage.DiscountCodeID]++
	return true, nil
}

func activeCode(code string, kind models.DiscountKind, value float64) *models.DiscountCode {
	now := time.Now()
	dc := &models.DiscountCode{
		Code:         code,
		Kind:         kind,
		Value:        value,
		PerUserLimit: 1,
		ValidFrom:    now.Add(-time.Hour),
		ValidUntil:   now.Add(time.Hour),
		IsActive:     true,
	}
	dc.ID = "id-" + code
	return dc
}

func TestCalculateDiscountAmount_Percentage(t *testing.T) {
	svc := NewDiscountService(newFakeDiscountRepo())

	b := svc.CalculateDiscountAmount(1000, activeCode("SAVE20", models.DiscountKindPercentage, 20))
	assert.Equal(t, int64(1000), b.OriginalAmount)
	assert.Equal(t, int64(200), b.DiscountAmount)
	assert.Equal(t, int64(800), b.FinalAmount)
}

func TestCalculateDiscountAmount_PercentageRoundsHalfUp(t *testing.T) {
	svc := NewDiscountService(newFakeDiscountRepo())

	// 12.5% of 999 = 124.875, rounds to 125
	b := svc.CalculateDiscountAmount(999, activeCode("ODD", models.DiscountKindPercentage, 12.5))
	assert.Equal(t, int64(125), b.DiscountAmount)
	assert.Equal(t, int64(874), b.FinalAmount)

	// 15% of 50 = 7.5, rounds to 8
	b = svc.CalculateDiscountAmount(50, activeCode("HALF", models.DiscountKindPercentage, 15))
	assert.Equal(t, int64(8), b.DiscountAmount)
}

func TestCalculateDiscountAmount_FixedCappedAtAmount(t *testing.T) {
	svc := NewDiscountService(newFakeDiscountRepo())

	b := svc.CalculateDiscountAmount(100, activeCode("BIG", models.DiscountKindFixedAmount, 150))
	assert.Equal(t, int64(100), b.DiscountAmount)
	assert.Equal(t, int64(0), b.FinalAmount)
}

func TestValidateDiscount_HappyPath(t *testing.T) {
	repo := newFakeDiscountRepo()
	dc := activeCode("WELCOME", models.DiscountKindPercentage, 10)
	repo.codes[dc.Code] = dc
	svc := NewDiscountService(repo)

	got, err := svc.ValidateDiscount(context.Background(), "WELCOME", "user-1", 1000, models.PlanTypeProfessional)
	require.NoError(t, err)
	assert.Equal(t, dc.ID, got.ID)
}

func TestValidateDiscount_InvalidAmount(t *testing.T) {
	svc := NewDiscountService(newFakeDiscountRepo())

	_, err := svc.ValidateDiscount(context.Background(), "ANY", "user-1", 0, models.PlanTypeProfessional)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestValidateDiscount_UnknownAndInactive(t *testing.T) {
	repo := newFakeDiscountRepo()
	inactive := activeCode("GONE", models.DiscountKindPercentage, 10)
	inactive.IsActive = false
	repo.codes[inactive.Code] = inactive
	svc := NewDiscountService(repo)

	_, err := svc.ValidateDiscount(context.Background(), "NOPE", "user-1", 1000, models.PlanTypeProfessional)
	assert.ErrorIs(t, err, apperrors.ErrDiscountNotFound)

	// Inactive codes are indistinguishable from unknown ones.
	_, err = svc.ValidateDiscount(context.Background(), "GONE", "user-1", 1000, models.PlanTypeProfessional)
	assert.ErrorIs(t, err, apperrors.ErrDiscountNotFound)
}

func TestValidateDiscount_ExpiredWindow(t *testing.T) {
	repo := newFakeDiscountRepo()
	expired := activeCode("OLD", models.DiscountKindPercentage, 10)
	expired.ValidFrom = time.Now().Add(-48 * time.Hour)
	expired.ValidUntil = time.Now().Add(-24 * time.Hour)
	repo.codes[expired.Code] = expired
	svc := NewDiscountService(repo)

	_, err := svc.ValidateDiscount(context.Background(), "OLD", "user-1", 1000, models.PlanTypeProfessional)
	assert.ErrorIs(t, err, apperrors.ErrDiscountExpired)
}

func TestValidateDiscount_PlanMismatch(t *testing.T) {
	repo := newFakeDiscountRepo()
	dc := activeCode("PRO", models.DiscountKindPercentage, 10)
	dc.PlanTypes = datatypes.JSON([]byte(`["professional"]`))
	repo.codes[dc.Code] = dc
	svc := NewDiscountService(repo)

	_, err := svc.ValidateDiscount(context.Background(), "PRO", "user-1", 1000, models.PlanTypeFree)
	assert.ErrorIs(t, err, apperrors.ErrPlanMismatch)

	_, err = svc.ValidateDiscount(context.Background(), "PRO", "user-1", 1000, models.PlanTypeProfessional)
	assert.NoError(t, err)
}

func TestValidateDiscount_PerUserLimit(t *testing.T) {
	repo := newFakeDiscountRepo()
	dc := activeCode("ONCE", models.DiscountKindPercentage, 10)
	repo.codes[dc.Code] = dc
	repo.userUsage["user-1|"+dc.ID] = 1
	svc := NewDiscountService(repo)

	_, err := svc.ValidateDiscount(context.Background(), "ONCE", "user-1", 1000, models.PlanTypeProfessional)
	assert.ErrorIs(t, err, apperrors.ErrUsageExceeded)

	// A different user still qualifies.
	_, err = svc.ValidateDiscount(context.Background(), "ONCE", "user-2", 1000, models.PlanTypeProfessional)
	assert.NoError(t, err)
}

func TestValidateDiscount_GlobalLimit(t *testing.T) {
	repo := newFakeDiscountRepo()
	dc := activeCode("CAPPED", models.DiscountKindPercentage, 10)
	dc.GlobalLimit = 5
	repo.codes[dc.Code] = dc
	repo.globalUsage[dc.ID] = 5
	svc := NewDiscountService(repo)

	_, err := svc.ValidateDiscount(context.Background(), "CAPPED", "user-1", 1000, models.PlanTypeProfessional)
	assert.ErrorIs(t, err, apperrors.ErrUsageExceeded)
}

func TestRecordDiscountUsage_Idempotent(t *testing.T) {
	repo := newFakeDiscountRepo()
	svc := NewDiscountService(repo)

	inserted, err := svc.RecordDiscountUsage(context.Background(), "user-1", "code-1", "ref-1")
	require.NoError(t, err)
	assert.True(t, inserted)

	// Re-delivered callback hits the unique constraint and becomes a no-op.
	inserted, err = svc.RecordDiscountUsage(context.Background(), "user-1", "code-1", "ref-1")
	require.NoError(t, err)
	assert.False(t, inserted)

	assert.Equal(t, int64(1), repo.userUsage["user-1|code-1"])
}

func TestCreateCode_RejectsBadShapes(t *testing.T) {
	svc := NewDiscountService(newFakeDiscountRepo())
	now := time.Now()

	err := svc.CreateCode(context.Background(), &models.DiscountCode{
		Code: "X", Kind: models.DiscountKindPercentage, Value: 120,
		ValidFrom: now, ValidUntil: now.Add(time.Hour),
	})
	assert.Error(t, err)

	err = svc.CreateCode(context.Background(), &models.DiscountCode{
		Code: "Y", Kind: models.DiscountKindFixedAmount, Value: 100,
		ValidFrom: now.Add(time.Hour), ValidUntil: now,
	})
	assert.Error(t, err)
}
