package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity event types.
const (
	EventTrialStarted        = "TRIAL_STARTED"
	EventTrialExpired        = "TRIAL_EXPIRED"
	EventSubscriptionExpired = "SUBSCRIPTION_EXPIRED"
	EventResumeDownloaded    = "RESUME_DOWNLOADED"
	EventPaymentCompleted    = "PAYMENT_COMPLETED"
)

type UserActivity struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID    string         `gorm:"not null;index" json:"user_id"`
	EventType string         `gorm:"type:varchar(100);index;not null" json:"event_type"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (UserActivity) TableName() string {
	return "user_activity"
}
