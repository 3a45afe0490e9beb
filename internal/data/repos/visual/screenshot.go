package visual

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

type ScreenshotRepo interface {
	Create(dbc dbctx.Context, s *domain.Screenshot) (*domain.Screenshot, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Screenshot, error)
	ListByTestRun(dbc dbctx.Context, testRunID uuid.UUID) ([]*domain.Screenshot, error)
}

type screenshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScreenshotRepo(db *gorm.DB, baseLog *logger.Logger) ScreenshotRepo {
	return &screenshotRepo{db: db, log: baseLog.With("repo", "ScreenshotRepo")}
}

func (r *screenshotRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

// Create is a plain insert. (test_run_id, screen_name) is deliberately not unique.
func (r *screenshotRepo) Create(dbc dbctx.Context, s *domain.Screenshot) (*domain.Screenshot, error) {
	if err := r.tx(dbc).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *screenshotRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Screenshot, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Screenshot
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *screenshotRepo) ListByTestRun(dbc dbctx.Context, testRunID uuid.UUID) ([]*domain.Screenshot, error) {
	var out []*domain.Screenshot
	if testRunID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Where("test_run_id = ?", testRunID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
