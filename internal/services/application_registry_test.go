package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos"
	"github.com/yungbote/pixelbuddy-backend/internal/data/repos/testutil"
	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
)

// racingApplicationRepo simulates losing a first-insert race: a competing
// writer inserts the row just before our Create, which then hits the unique index.
type racingApplicationRepo struct {
	repos.ApplicationRepo
	misses int
}

func (r *racingApplicationRepo) GetByName(dbc dbctx.Context, name string) (*domain.Application, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.ApplicationRepo.GetByName(dbc, name)
}

func TestApplicationRegistryResolveIsIdempotent(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Of(context.Background())
	desc := "web storefront"

	first, err := h.registry.Resolve(dbc, "Shopping App", &desc)
	require.NoError(t, err)
	second, err := h.registry.Resolve(dbc, "  Shopping App ", nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Description)
	assert.Equal(t, "web storefront", *second.Description)

	var count int64
	require.NoError(t, h.db.Model(&domain.Application{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplicationRegistryNamesAreExactMatch(t *testing.T) {
	h := newHarness(t)
	dbc := dbctx.Of(context.Background())

	a, err := h.registry.Resolve(dbc, "Shopping App", nil)
	require.NoError(t, err)
	b, err := h.registry.Resolve(dbc, "shopping app", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestApplicationRegistryRecoversFromDuplicateInsert(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	winner := testutil.SeedApplication(t, ctx, h.db, "Racy App")

	racing := &racingApplicationRepo{ApplicationRepo: h.apps, misses: 1}
	reg := NewApplicationRegistry(testutil.Logger(t), racing)

	got, err := reg.Resolve(dbctx.Of(ctx), "Racy App", nil)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
}

func TestApplicationRegistryRejectsBlankName(t *testing.T) {
	h := newHarness(t)
	_, err := h.registry.Resolve(dbctx.Of(context.Background()), "   ", nil)
	assert.Equal(t, KindValidation, ErrorKind(err))
}

func TestApplicationRegistryWrapsStoreErrors(t *testing.T) {
	h := newHarness(t)
	sqlDB, err := h.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = h.registry.Resolve(dbctx.Of(context.Background()), "Any", nil)
	require.Error(t, err)
	assert.Equal(t, KindPersistence, ErrorKind(err))
	assert.NotErrorIs(t, err, gorm.ErrRecordNotFound)
}
