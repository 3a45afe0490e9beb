package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Baseline is the reference image for one (application, screen) pair.
// At most one row per pair is active; idx_baselines_active_screen enforces it in the store.
type Baseline struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID    `gorm:"type:uuid;not null;index;uniqueIndex:idx_baselines_active_screen,where:is_active = true" json:"application_id"`
	Application   *Application `gorm:"constraint:OnDelete:CASCADE;foreignKey:ApplicationID;references:ID" json:"-"`
	ScreenName    string       `gorm:"column:screen_name;not null;uniqueIndex:idx_baselines_active_screen,where:is_active = true" json:"screen_name"`
	ImageURL      string       `gorm:"column:image_url;not null" json:"image_url"`
	IsActive      bool         `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
}

func (Baseline) TableName() string { return "baselines" }

func (b *Baseline) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
