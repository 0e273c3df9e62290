package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumecraft_backend/internal/models"
)

var ErrUnknownFeature = errors.New("unknown usage feature")

type UsageRepository interface {
	Increment(ctx context.Context, userID, month, feature string) (int, error)
	Get(ctx context.Context, userID, month string) (*models.UsageCounter, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// Increment upserts the (user, month) row and bumps the feature column in a
// single statement so concurrent requests serialize at the database.
func (r *usageRepository) Increment(ctx context.Context, userID, month, feature string) (int, error) {
	column, ok := models.FeatureColumn[feature]
	if !ok {
		return 0, ErrUnknownFeature
	}

	counter := models.UsageCounter{UserID: userID, Month: month}
	switch feature {
	case models.FeatureResumesDownloaded:
		counter.ResumesDownloaded = 1
	case models.FeatureCoverLettersGenerated:
		counter.CoverLettersGenerated = 1
	case models.FeatureEmailsGenerated:
		counter.EmailsGenerated = 1
	case models.FeatureJobApplications:
		counter.JobApplications = 1
	case models.FeatureInterviewSessions:
		counter.InterviewSessions = 1
	case models.FeatureCoachingSessions:
		counter.CoachingSessions = 1
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column: gorm.Expr(fmt.Sprintf("usage_tracking.%s + 1", column)),
		}),
	}).Create(&counter).Error
	if err != nil {
		return 0, err
	}

	updated, err := r.Get(ctx, userID, month)
	if err != nil {
		return 0, err
	}
	return updated.CounterValue(feature), nil
}

// Get returns the row for (user, month), or a zero-valued counter when no
// event has happened yet this month.
func (r *usageRepository) Get(ctx context.Context, userID, month string) (*models.UsageCounter, error) {
	var counter models.UsageCounter
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ?", userID, month).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UsageCounter{UserID: userID, Month: month}, nil
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}
