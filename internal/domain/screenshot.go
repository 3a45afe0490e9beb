package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Screenshot is one screen's result within a run. BaselineID is a weak reference: no cascade.
type Screenshot struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TestRunID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"test_run_id"`
	TestRun              *TestRun   `gorm:"constraint:OnDelete:CASCADE;foreignKey:TestRunID;references:ID" json:"-"`
	ScreenName           string     `gorm:"column:screen_name;not null" json:"screen_name"`
	BaselineID           *uuid.UUID `gorm:"type:uuid;index" json:"baseline_id"`
	ActualImageURL       string     `gorm:"column:actual_image_url;not null" json:"actual_image_url"`
	DiffImageURL         *string    `gorm:"column:diff_image_url" json:"diff_image_url"`
	DifferencePercentage *float64   `gorm:"column:difference_percentage" json:"difference_percentage"`
	Status               Status     `gorm:"column:status;not null" json:"status"`
	CreatedAt            time.Time  `gorm:"not null" json:"created_at"`
}

func (Screenshot) TableName() string { return "screenshots" }

func (s *Screenshot) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
