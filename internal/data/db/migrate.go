package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/domain"
)

// AutoMigrateAll creates the dashboard tables together with the race-guard indexes:
// unique applications.name and a partial unique index on active (application_id, screen_name) baselines.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Application{},
		&domain.Baseline{},
		&domain.TestRun{},
		&domain.Screenshot{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
