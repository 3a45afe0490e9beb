package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos/testutil"
	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
)

func TestRunAggregatorCreateRun(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := testutil.SeedApplication(t, ctx, h.db, "App")

	run, err := h.aggregator.CreateRun(dbctx.Of(ctx), CreateRunInput{
		ApplicationID: app.ID,
		Total:         3,
		Failed:        1,
		Metadata:      map[string]any{"branch": "main", "build": 42},
		StartedAt:     fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, run.Status)
	assert.Equal(t, 3, run.TotalScreenshots)
	assert.Equal(t, 1, run.FailedScreenshots)
	require.NotNil(t, run.CompletedAt)

	stored, err := h.runs.GetByID(dbctx.Of(ctx), run.ID)
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(stored.Metadata, &meta))
	assert.Equal(t, "main", meta["branch"])
	assert.True(t, stored.StartedAt.Equal(fixedNow))
}

func TestRunAggregatorEmptyMetadataIsObject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := testutil.SeedApplication(t, ctx, h.db, "App")

	run, err := h.aggregator.CreateRun(dbctx.Of(ctx), CreateRunInput{ApplicationID: app.ID, Total: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPassed, run.Status)
	assert.JSONEq(t, `{}`, string(run.Metadata))
}

func TestRunAggregatorRecordScreenshotAllowsDuplicates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	app := testutil.SeedApplication(t, ctx, h.db, "App")
	run := testutil.SeedTestRun(t, ctx, h.db, app.ID, domain.StatusPassed, fixedNow)

	for i := 0; i < 2; i++ {
		_, err := h.aggregator.RecordScreenshot(dbc, RecordScreenshotInput{
			TestRunID:            run.ID,
			ScreenName:           "Login",
			ActualImageURL:       "https://img/a.png",
			DifferencePercentage: ptrFloat(0),
			Status:               domain.StatusPassed,
		})
		require.NoError(t, err)
	}
	shots, err := h.shots.ListByTestRun(dbc, run.ID)
	require.NoError(t, err)
	require.Len(t, shots, 2)
	require.NotNil(t, shots[0].DifferencePercentage)
	assert.Equal(t, 0.0, *shots[0].DifferencePercentage)
	assert.Nil(t, shots[0].BaselineID)
}

func TestRunStatusRollupProperty(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := testutil.SeedApplication(t, ctx, h.db, "App")

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 30
	properties := gopter.NewProperties(params)
	properties.Property("run is failed iff any screenshot failed", prop.ForAll(
		func(total, failed int) bool {
			if failed > total {
				failed = total
			}
			run, err := h.aggregator.CreateRun(dbctx.Of(ctx), CreateRunInput{
				ApplicationID: app.ID,
				Total:         total,
				Failed:        failed,
			})
			if err != nil {
				return false
			}
			want := domain.StatusPassed
			if failed > 0 {
				want = domain.StatusFailed
			}
			return run.Status == want && run.TotalScreenshots == total && run.FailedScreenshots == failed
		},
		gen.IntRange(1, 50),
		gen.IntRange(0, 50),
	))
	properties.TestingRun(t)
}
