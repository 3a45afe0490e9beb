package visual

import (
	"context"
	"testing"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos/testutil"
	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
)

func TestApplicationRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Of(context.Background())
	repo := NewApplicationRepo(db, testutil.Logger(t))

	desc := "E-commerce app"
	app, err := repo.Create(dbc, &domain.Application{Name: "Shopping App", Description: &desc})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if app.CreatedAt.IsZero() || app.UpdatedAt.IsZero() {
		t.Fatalf("Create: timestamps not populated")
	}

	got, err := repo.GetByName(dbc, "Shopping App")
	if err != nil || got == nil || got.ID != app.ID {
		t.Fatalf("GetByName: err=%v got=%v", err, got)
	}
	if got.Description == nil || *got.Description != desc {
		t.Fatalf("GetByName: description not persisted: %v", got.Description)
	}

	if miss, err := repo.GetByName(dbc, "shopping app"); err != nil || miss != nil {
		t.Fatalf("GetByName is exact-match: err=%v got=%v", err, miss)
	}

	if byID, err := repo.GetByID(dbc, app.ID); err != nil || byID == nil || byID.Name != "Shopping App" {
		t.Fatalf("GetByID: err=%v got=%v", err, byID)
	}

	_, err = repo.Create(dbc, &domain.Application{Name: "Shopping App"})
	if !IsDuplicate(err) {
		t.Fatalf("Create duplicate name: want duplicate error, got=%v", err)
	}

	if _, err := repo.Create(dbc, &domain.Application{Name: "Admin App"}); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	all, err := repo.List(dbc)
	if err != nil || len(all) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(all))
	}
	if all[0].Name != "Admin App" {
		t.Fatalf("List: want name order, got first=%q", all[0].Name)
	}
}
