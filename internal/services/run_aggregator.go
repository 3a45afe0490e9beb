package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos"
	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

type CreateRunInput struct {
	ApplicationID uuid.UUID
	Total         int
	Failed        int
	Metadata      map[string]any
	StartedAt     time.Time
	CompletedAt   time.Time
}

type RecordScreenshotInput struct {
	TestRunID            uuid.UUID
	ScreenName           string
	BaselineID           *uuid.UUID
	ActualImageURL       string
	DiffImageURL         *string
	DifferencePercentage *float64
	Status               domain.Status
}

// RunAggregator writes the run row with its final status and the per-screen
// rows. Neither is updated afterwards.
type RunAggregator interface {
	CreateRun(dbc dbctx.Context, in CreateRunInput) (*domain.TestRun, error)
	RecordScreenshot(dbc dbctx.Context, in RecordScreenshotInput) (*domain.Screenshot, error)
}

type runAggregator struct {
	log         *logger.Logger
	runs        repos.TestRunRepo
	screenshots repos.ScreenshotRepo
}

func NewRunAggregator(log *logger.Logger, runs repos.TestRunRepo, screenshots repos.ScreenshotRepo) RunAggregator {
	return &runAggregator{
		log:         log.With("service", "RunAggregator"),
		runs:        runs,
		screenshots: screenshots,
	}
}

func (a *runAggregator) CreateRun(dbc dbctx.Context, in CreateRunInput) (*domain.TestRun, error) {
	meta := datatypes.JSON([]byte("{}"))
	if len(in.Metadata) > 0 {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, &ValidationError{Field: "metadata", Reason: err.Error()}
		}
		meta = datatypes.JSON(raw)
	}
	started := in.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	completed := in.CompletedAt
	if completed.IsZero() {
		completed = started
	}
	completed = completed.UTC()

	run, err := a.runs.Create(dbc, &domain.TestRun{
		ApplicationID:     in.ApplicationID,
		Status:            domain.RollupStatus(in.Failed),
		TotalScreenshots:  in.Total,
		FailedScreenshots: in.Failed,
		Metadata:          meta,
		StartedAt:         started.UTC(),
		CompletedAt:       &completed,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "create test run", Err: err}
	}
	return run, nil
}

func (a *runAggregator) RecordScreenshot(dbc dbctx.Context, in RecordScreenshotInput) (*domain.Screenshot, error) {
	shot, err := a.screenshots.Create(dbc, &domain.Screenshot{
		TestRunID:            in.TestRunID,
		ScreenName:           in.ScreenName,
		BaselineID:           in.BaselineID,
		ActualImageURL:       in.ActualImageURL,
		DiffImageURL:         in.DiffImageURL,
		DifferencePercentage: in.DifferencePercentage,
		Status:               in.Status,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "record screenshot", Err: err}
	}
	return shot, nil
}
