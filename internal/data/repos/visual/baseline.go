package visual

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

type BaselineRepo interface {
	Create(dbc dbctx.Context, b *domain.Baseline) (*domain.Baseline, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Baseline, error)
	GetActive(dbc dbctx.Context, applicationID uuid.UUID, screenName string) (*domain.Baseline, error)
	ListActiveByApplication(dbc dbctx.Context, applicationID uuid.UUID) ([]*domain.Baseline, error)
	CountActiveByApplicationIDs(dbc dbctx.Context, applicationIDs []uuid.UUID) (map[uuid.UUID]int, error)
	UpdateImageURL(dbc dbctx.Context, id uuid.UUID, imageURL string) error
}

type baselineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBaselineRepo(db *gorm.DB, baseLog *logger.Logger) BaselineRepo {
	return &baselineRepo{db: db, log: baseLog.With("repo", "BaselineRepo")}
}

func (r *baselineRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *baselineRepo) Create(dbc dbctx.Context, b *domain.Baseline) (*domain.Baseline, error) {
	if err := r.tx(dbc).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *baselineRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Baseline, error) {
	var out []*domain.Baseline
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *baselineRepo) GetActive(dbc dbctx.Context, applicationID uuid.UUID, screenName string) (*domain.Baseline, error) {
	if applicationID == uuid.Nil || screenName == "" {
		return nil, nil
	}
	var row domain.Baseline
	err := r.tx(dbc).
		Where("application_id = ? AND screen_name = ? AND is_active = ?", applicationID, screenName, true).
		Order("created_at DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *baselineRepo) ListActiveByApplication(dbc dbctx.Context, applicationID uuid.UUID) ([]*domain.Baseline, error) {
	var out []*domain.Baseline
	if applicationID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Where("application_id = ? AND is_active = ?", applicationID, true).
		Order("screen_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *baselineRepo) CountActiveByApplicationIDs(dbc dbctx.Context, applicationIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	if len(applicationIDs) == 0 {
		return out, nil
	}
	type countRow struct {
		ApplicationID uuid.UUID
		Total         int
	}
	var rows []countRow
	if err := r.tx(dbc).
		Model(&domain.Baseline{}).
		Select("application_id, COUNT(*) AS total").
		Where("application_id IN ? AND is_active = ?", applicationIDs, true).
		Group("application_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ApplicationID] = row.Total
	}
	return out, nil
}

// UpdateImageURL overwrites the stored reference in place; the row keeps its id and active flag.
func (r *baselineRepo) UpdateImageURL(dbc dbctx.Context, id uuid.UUID, imageURL string) error {
	if id == uuid.Nil {
		return nil
	}
	res := r.tx(dbc).
		Model(&domain.Baseline{}).
		Where("id = ?", id).
		Update("image_url", imageURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
