package visual

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

type TestRunRepo interface {
	Create(dbc dbctx.Context, run *domain.TestRun) (*domain.TestRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.TestRun, error)
	ListByApplication(dbc dbctx.Context, applicationID uuid.UUID, limit, offset int) ([]*domain.TestRun, error)
	LatestByApplicationIDs(dbc dbctx.Context, applicationIDs []uuid.UUID) (map[uuid.UUID]*domain.TestRun, error)
}

type testRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestRunRepo(db *gorm.DB, baseLog *logger.Logger) TestRunRepo {
	return &testRunRepo{db: db, log: baseLog.With("repo", "TestRunRepo")}
}

func (r *testRunRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *testRunRepo) Create(dbc dbctx.Context, run *domain.TestRun) (*domain.TestRun, error) {
	if err := r.tx(dbc).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *testRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.TestRun, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.TestRun
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// ListByApplication returns run history newest first.
func (r *testRunRepo) ListByApplication(dbc dbctx.Context, applicationID uuid.UUID, limit, offset int) ([]*domain.TestRun, error) {
	var out []*domain.TestRun
	if applicationID == uuid.Nil {
		return out, nil
	}
	q := r.tx(dbc).
		Where("application_id = ?", applicationID).
		Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *testRunRepo) LatestByApplicationIDs(dbc dbctx.Context, applicationIDs []uuid.UUID) (map[uuid.UUID]*domain.TestRun, error) {
	out := map[uuid.UUID]*domain.TestRun{}
	if len(applicationIDs) == 0 {
		return out, nil
	}
	var rows []*domain.TestRun
	latest := r.tx(dbc).
		Model(&domain.TestRun{}).
		Select("application_id, MAX(started_at)").
		Where("application_id IN ?", applicationIDs).
		Group("application_id")
	if err := r.tx(dbc).
		Where("(application_id, started_at) IN (?)", latest).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if prev, ok := out[row.ApplicationID]; !ok || row.StartedAt.After(prev.StartedAt) {
			out[row.ApplicationID] = row
		}
	}
	return out, nil
}
