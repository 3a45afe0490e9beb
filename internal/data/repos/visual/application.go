package visual

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

type ApplicationRepo interface {
	Create(dbc dbctx.Context, app *domain.Application) (*domain.Application, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Application, error)
	GetByName(dbc dbctx.Context, name string) (*domain.Application, error)
	List(dbc dbctx.Context) ([]*domain.Application, error)
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{db: db, log: baseLog.With("repo", "ApplicationRepo")}
}

func (r *applicationRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *applicationRepo) Create(dbc dbctx.Context, app *domain.Application) (*domain.Application, error) {
	if err := r.tx(dbc).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Application, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Application
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// GetByName is an exact, case-sensitive match. Returns nil, nil when absent.
func (r *applicationRepo) GetByName(dbc dbctx.Context, name string) (*domain.Application, error) {
	if name == "" {
		return nil, nil
	}
	var row domain.Application
	if err := r.tx(dbc).Where("name = ?", name).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *applicationRepo) List(dbc dbctx.Context) ([]*domain.Application, error) {
	var out []*domain.Application
	if err := r.tx(dbc).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
