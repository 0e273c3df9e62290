package database

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumecraft_backend/internal/models"
)

// Migrate creates the schema and the indexes AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Subscription{},
		&models.TrialSubscription{},
		&models.PaymentTransaction{},
		&models.DiscountCode{},
		&models.DiscountUsage{},
		&models.UsageCounter{},
		&models.UserActivity{},
		&models.ResumeTemplate{},
		&models.Resume{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	// One active trial per user, enforced in the database so concurrent
	// trial starts cannot slip past the service-level check.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_trial_per_user
		ON trial_subscriptions (user_id)
		WHERE status = 'active'
	`).Error; err != nil {
		return fmt.Errorf("failed to create active trial index: %w", err)
	}

	return seed(db)
}

// seed installs a starter template and a launch discount on an empty
// database.
func seed(db *gorm.DB) error {
	var templateCount int64
	if err := db.Model(&models.ResumeTemplate{}).Count(&templateCount).Error; err != nil {
		return err
	}
	if templateCount == 0 {
		if err := db.Create(&models.ResumeTemplate{
			Name:     "classic",
			HTML:     classicTemplateHTML,
			IsActive: true,
		}).Error; err != nil {
			return fmt.Errorf("failed to seed template: %w", err)
		}
	}

	var codeCount int64
	if err := db.Model(&models.DiscountCode{}).Count(&codeCount).Error; err != nil {
		return err
	}
	if codeCount == 0 {
		now := time.Now()
		if err := db.Create(&models.DiscountCode{
			Code:         "LAUNCH20",
			Kind:         models.DiscountKindPercentage,
			Value:        20,
			PlanTypes:    datatypes.JSON([]byte(`["professional"]`)),
			PerUserLimit: 1,
			GlobalLimit:  1000,
			ValidFrom:    now,
			ValidUntil:   now.AddDate(0, 3, 0),
			IsActive:     true,
		}).Error; err != nil {
			return fmt.Errorf("failed to seed discount code: %w", err)
		}
	}

	return nil
}

const classicTemplateHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Georgia, serif; color: oklch(0.205 0 0); margin: 40px; }
h1 { font-size: 28px; margin-bottom: 2px; }
.headline { color: oklch(0.556 0 0); font-size: 15px; }
.contact { font-size: 12px; color: oklch(0.439 0 0); margin-top: 6px; }
h2 { font-size: 16px; border-bottom: 1px solid oklch(0.922 0 0); padding-bottom: 3px; margin-top: 22px; }
.entry { margin-bottom: 12px; }
.entry-header { display: flex; justify-content: space-between; }
.entry-title { font-weight: bold; }
.entry-period { color: oklch(0.556 0 0); font-size: 12px; }
.entry-org { font-style: italic; font-size: 13px; }
ul { margin: 4px 0 0 18px; font-size: 13px; }
.skills { list-style: none; margin: 6px 0 0 0; padding: 0; }
.skills li { display: inline-block; background: oklch(0.97 0 0); padding: 2px 8px; margin: 2px; border-radius: 3px; font-size: 12px; }
</style>
</head>
<body>
<h1>{{name}}</h1>
<div class="headline">{{headline}}</div>
<div class="contact">{{email}} {{phone}} {{location}} {{website}}</div>
<h2>Summary</h2>
<p>{{summary}}</p>
<h2>Experience</h2>
{{experience}}
<h2>Education</h2>
{{education}}
<h2>Skills</h2>
{{skills}}
{{sections}}
</body>
</html>`
