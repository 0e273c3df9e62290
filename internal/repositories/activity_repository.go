package repositories

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumecraft_backend/internal/models"
)

type ActivityRepository interface {
	Log(ctx context.Context, userID, eventType string, metadata map[string]interface{}) error
	CountByUserAndEvent(ctx context.Context, userID, eventType string) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Log(ctx context.Context, userID, eventType string, metadata map[string]interface{}) error {
	entry := models.UserActivity{
		UserID:    userID,
		EventType: eventType,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		entry.Metadata = datatypes.JSON(raw)
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *activityRepository) CountByUserAndEvent(ctx context.Context, userID, eventType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserActivity{}).
		Where("user_id = ? AND event_type = ?", userID, eventType).
		Count(&count).Error
	return count, err
}
