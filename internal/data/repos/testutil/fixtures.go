package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/domain"
)

func SeedApplication(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *domain.Application {
	tb.Helper()
	a := &domain.Application{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed application: %v", err)
	}
	return a
}

func SeedBaseline(tb testing.TB, ctx context.Context, tx *gorm.DB, appID uuid.UUID, screen, imageURL string) *domain.Baseline {
	tb.Helper()
	b := &domain.Baseline{
		ID:            uuid.New(),
		ApplicationID: appID,
		ScreenName:    screen,
		ImageURL:      imageURL,
		IsActive:      true,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed baseline: %v", err)
	}
	return b
}

func SeedTestRun(tb testing.TB, ctx context.Context, tx *gorm.DB, appID uuid.UUID, status domain.Status, startedAt time.Time) *domain.TestRun {
	tb.Helper()
	r := &domain.TestRun{
		ID:            uuid.New(),
		ApplicationID: appID,
		Status:        status,
		Metadata:      datatypes.JSON([]byte("{}")),
		StartedAt:     startedAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed test run: %v", err)
	}
	return r
}

func SeedScreenshot(tb testing.TB, ctx context.Context, tx *gorm.DB, runID uuid.UUID, screen string, baselineID *uuid.UUID) *domain.Screenshot {
	tb.Helper()
	s := &domain.Screenshot{
		ID:             uuid.New(),
		TestRunID:      runID,
		ScreenName:     screen,
		BaselineID:     baselineID,
		ActualImageURL: "https://storage.example/" + screen + ".png",
		Status:         domain.StatusPassed,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed screenshot: %v", err)
	}
	return s
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
