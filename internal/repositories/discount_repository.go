package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumecraft_backend/internal/models"
)

var ErrDiscountNotFound = errors.New("discount code not found")

type DiscountRepository interface {
	Create(ctx context.Context, code *models.DiscountCode) error
	Update(ctx context.Context, code *models.DiscountCode) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.DiscountCode, error)
	FindByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	ListCodes(ctx context.Context) ([]models.DiscountCode, error)

	CountUserUsage(ctx context.Context, userID, discountCodeID string) (int64, error)
	CountGlobalUsage(ctx context.Context, discountCodeID string) (int64, error)
	RecordUsage(ctx context.Context, usage *models.DiscountUsage) (bool, error)
}

type discountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) Create(ctx context.Context, code *models.DiscountCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *discountRepository) Update(ctx context.Context, code *models.DiscountCode) error {
	return r.db.WithContext(ctx).Save(code).Error
}

func (r *discountRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.DiscountCode{}, "id = ?", id).Error
}

func (r *discountRepository) FindByID(ctx context.Context, id string) (*models.DiscountCode, error) {
	var code models.DiscountCode
	err := r.db.WithContext(ctx).First(&code, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *discountRepository) FindByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	err := r.db.WithContext(ctx).First(&dc, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dc, nil
}

func (r *discountRepository) ListCodes(ctx context.Context) ([]models.DiscountCode, error) {
	var codes []models.DiscountCode
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error
	return codes, err
}

func (r *discountRepository) CountUserUsage(ctx context.Context, userID, discountCodeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DiscountUsage{}).
		Where("user_id = ? AND discount_code_id = ?", userID, discountCodeID).
		Count(&count).Error
	return count, err
}

func (r *discountRepository) CountGlobalUsage(ctx context.Context, discountCodeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DiscountUsage{}).
		Where("discount_code_id = ?", discountCodeID).
		Count(&count).Error
	return count, err
}

// RecordUsage inserts a usage row. The (user_id, discount_code_id,
// payment_reference) unique index turns duplicate callbacks into no-ops;
// the returned bool reports whether a new row was written.
func (r *discountRepository) RecordUsage(ctx context.Context, usage *models.DiscountUsage) (bool, error) {
	if usage.UsedAt.IsZero() {
		usage.UsedAt = time.Now()
	}

	var inserted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(usage)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected > 0
		if !inserted {
			return nil
		}
		return tx.Model(&models.DiscountCode{}).
			Where("id = ?", usage.DiscountCodeID).
			UpdateColumn("times_redeemed", gorm.Expr("times_redeemed + 1")).Error
	})
	return inserted, err
}
