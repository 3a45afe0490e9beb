package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TestRun is one ingestion batch. Its status is computed before insert and never updated.
type TestRun struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_test_runs_app_started,priority:1" json:"application_id"`
	Application       *Application   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ApplicationID;references:ID" json:"-"`
	Status            Status         `gorm:"column:status;not null" json:"status"`
	TotalScreenshots  int            `gorm:"column:total_screenshots;not null;default:0" json:"total_screenshots"`
	FailedScreenshots int            `gorm:"column:failed_screenshots;not null;default:0" json:"failed_screenshots"`
	Metadata          datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	StartedAt         time.Time      `gorm:"column:started_at;not null;index:idx_test_runs_app_started,priority:2,sort:desc" json:"started_at"`
	CompletedAt       *time.Time     `gorm:"column:completed_at" json:"completed_at"`
}

func (TestRun) TableName() string { return "test_runs" }

func (r *TestRun) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
