package models

// Feature names accepted by the usage tracker.
const (
	FeatureResumesDownloaded     = "resumes_downloaded"
	FeatureCoverLettersGenerated = "cover_letters_generated"
	FeatureEmailsGenerated       = "emails_generated"
	FeatureJobApplications       = "job_applications"
	FeatureInterviewSessions     = "interview_sessions"
	FeatureCoachingSessions      = "coaching_sessions"
)

// UsageCounter holds per-user monthly counters. Exactly one row exists per
// (user, month); counters only ever increment and reset by rolling to a new
// month key.
type UsageCounter struct {
	BaseModel
	UserID                string `gorm:"not null;uniqueIndex:idx_usage_user_month" json:"user_id"`
	Month                 string `gorm:"type:varchar(7);not null;uniqueIndex:idx_usage_user_month" json:"month"` // YYYY-MM
	ResumesDownloaded     int    `gorm:"default:0" json:"resumes_downloaded"`
	CoverLettersGenerated int    `gorm:"default:0" json:"cover_letters_generated"`
	EmailsGenerated       int    `gorm:"default:0" json:"emails_generated"`
	JobApplications       int    `gorm:"default:0" json:"job_applications"`
	InterviewSessions     int    `gorm:"default:0" json:"interview_sessions"`
	CoachingSessions      int    `gorm:"default:0" json:"coaching_sessions"`
}

func (UsageCounter) TableName() string {
	return "usage_tracking"
}

// FeatureColumn maps a feature name to its counter column. Keeping the map
// here keeps the upsert SQL in the repository free of name switches.
var FeatureColumn = map[string]string{
	FeatureResumesDownloaded:     "resumes_downloaded",
	FeatureCoverLettersGenerated: "cover_letters_generated",
	FeatureEmailsGenerated:       "emails_generated",
	FeatureJobApplications:       "job_applications",
	FeatureInterviewSessions:     "interview_sessions",
	FeatureCoachingSessions:      "coaching_sessions",
}

// CounterValue returns the value of the named feature counter.
func (u *UsageCounter) CounterValue(feature string) int {
	switch feature {
	case FeatureResumesDownloaded:
		return u.ResumesDownloaded
	case FeatureCoverLettersGenerated:
		return u.CoverLettersGenerated
	case FeatureEmailsGenerated:
		return u.EmailsGenerated
	case FeatureJobApplications:
		return u.JobApplications
	case FeatureInterviewSessions:
		return u.InterviewSessions
	case FeatureCoachingSessions:
		return u.CoachingSessions
	default:
		return 0
	}
}
