package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos"
	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/observability"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

const (
	DefaultRunPageSize = 20
	MaxRunPageSize     = 100
)

type ApplicationSummary struct {
	*domain.Application
	LatestRun       *domain.TestRun `json:"latest_run"`
	ActiveBaselines int             `json:"active_baselines"`
}

type ApplicationDetail struct {
	*domain.Application
	Baselines []*domain.Baseline `json:"baselines"`
}

type ScreenshotView struct {
	*domain.Screenshot
	BaselineImageURL *string `json:"baseline_image_url"`
}

type RunDetail struct {
	*domain.TestRun
	Application *domain.Application `json:"application"`
	Screenshots []ScreenshotView    `json:"screenshots"`
}

type ScreenshotDetail struct {
	ScreenshotView
	Baseline *domain.Baseline `json:"baseline"`
	TestRun  *domain.TestRun  `json:"test_run"`
}

// DashboardService is the read side consumed by the dashboard UI, plus the
// "set as baseline" action.
type DashboardService interface {
	ListApplications(ctx context.Context) ([]ApplicationSummary, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*ApplicationDetail, error)
	ListRuns(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]*domain.TestRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*RunDetail, error)
	GetScreenshot(ctx context.Context, id uuid.UUID) (*ScreenshotDetail, error)
	PromoteToBaseline(ctx context.Context, screenshotID uuid.UUID) (*domain.Baseline, error)
}

type dashboardService struct {
	log         *logger.Logger
	apps        repos.ApplicationRepo
	baselines   repos.BaselineRepo
	runs        repos.TestRunRepo
	screenshots repos.ScreenshotRepo
	resolver    BaselineResolver
	metrics     *observability.Metrics
}

func NewDashboardService(
	log *logger.Logger,
	apps repos.ApplicationRepo,
	baselines repos.BaselineRepo,
	runs repos.TestRunRepo,
	screenshots repos.ScreenshotRepo,
	resolver BaselineResolver,
	metrics *observability.Metrics,
) DashboardService {
	return &dashboardService{
		log:         log.With("service", "DashboardService"),
		apps:        apps,
		baselines:   baselines,
		runs:        runs,
		screenshots: screenshots,
		resolver:    resolver,
		metrics:     metrics,
	}
}

func (s *dashboardService) ListApplications(ctx context.Context) ([]ApplicationSummary, error) {
	dbc := dbctx.Of(ctx)
	apps, err := s.apps.List(dbc)
	if err != nil {
		return nil, &PersistenceError{Op: "list applications", Err: err}
	}
	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ID)
	}
	latest, err := s.runs.LatestByApplicationIDs(dbc, ids)
	if err != nil {
		return nil, &PersistenceError{Op: "latest runs", Err: err}
	}
	counts, err := s.baselines.CountActiveByApplicationIDs(dbc, ids)
	if err != nil {
		return nil, &PersistenceError{Op: "count baselines", Err: err}
	}

	out := make([]ApplicationSummary, 0, len(apps))
	for _, a := range apps {
		out = append(out, ApplicationSummary{
			Application:     a,
			LatestRun:       latest[a.ID],
			ActiveBaselines: counts[a.ID],
		})
	}
	return out, nil
}

func (s *dashboardService) GetApplication(ctx context.Context, id uuid.UUID) (*ApplicationDetail, error) {
	dbc := dbctx.Of(ctx)
	app, err := s.apps.GetByID(dbc, id)
	if err != nil {
		return nil, &PersistenceError{Op: "get application", Err: err}
	}
	if app == nil {
		return nil, ErrNotFound
	}
	baselines, err := s.baselines.ListActiveByApplication(dbc, id)
	if err != nil {
		return nil, &PersistenceError{Op: "list baselines", Err: err}
	}
	return &ApplicationDetail{Application: app, Baselines: baselines}, nil
}

func (s *dashboardService) ListRuns(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]*domain.TestRun, error) {
	dbc := dbctx.Of(ctx)
	app, err := s.apps.GetByID(dbc, applicationID)
	if err != nil {
		return nil, &PersistenceError{Op: "get application", Err: err}
	}
	if app == nil {
		return nil, ErrNotFound
	}
	if limit <= 0 {
		limit = DefaultRunPageSize
	}
	if limit > MaxRunPageSize {
		limit = MaxRunPageSize
	}
	if offset < 0 {
		offset = 0
	}
	runs, err := s.runs.ListByApplication(dbc, applicationID, limit, offset)
	if err != nil {
		return nil, &PersistenceError{Op: "list runs", Err: err}
	}
	return runs, nil
}

func (s *dashboardService) GetRun(ctx context.Context, id uuid.UUID) (*RunDetail, error) {
	dbc := dbctx.Of(ctx)
	run, err := s.runs.GetByID(dbc, id)
	if err != nil {
		return nil, &PersistenceError{Op: "get run", Err: err}
	}
	if run == nil {
		return nil, ErrNotFound
	}
	app, err := s.apps.GetByID(dbc, run.ApplicationID)
	if err != nil {
		return nil, &PersistenceError{Op: "get application", Err: err}
	}
	shots, err := s.screenshots.ListByTestRun(dbc, id)
	if err != nil {
		return nil, &PersistenceError{Op: "list screenshots", Err: err}
	}
	byID, err := s.baselinesFor(dbc, shots)
	if err != nil {
		return nil, err
	}

	views := make([]ScreenshotView, 0, len(shots))
	for _, sh := range shots {
		views = append(views, viewOf(sh, byID))
	}
	return &RunDetail{TestRun: run, Application: app, Screenshots: views}, nil
}

func (s *dashboardService) GetScreenshot(ctx context.Context, id uuid.UUID) (*ScreenshotDetail, error) {
	dbc := dbctx.Of(ctx)
	shot, err := s.screenshots.GetByID(dbc, id)
	if err != nil {
		return nil, &PersistenceError{Op: "get screenshot", Err: err}
	}
	if shot == nil {
		return nil, ErrNotFound
	}
	run, err := s.runs.GetByID(dbc, shot.TestRunID)
	if err != nil {
		return nil, &PersistenceError{Op: "get run", Err: err}
	}
	byID, err := s.baselinesFor(dbc, []*domain.Screenshot{shot})
	if err != nil {
		return nil, err
	}
	var baseline *domain.Baseline
	if shot.BaselineID != nil {
		baseline = byID[*shot.BaselineID]
	}
	return &ScreenshotDetail{
		ScreenshotView: viewOf(shot, byID),
		Baseline:       baseline,
		TestRun:        run,
	}, nil
}

// PromoteToBaseline makes the screenshot's actual image the active baseline
// for its screen. The screenshot row itself is left unchanged.
func (s *dashboardService) PromoteToBaseline(ctx context.Context, screenshotID uuid.UUID) (*domain.Baseline, error) {
	dbc := dbctx.Of(ctx)
	shot, err := s.screenshots.GetByID(dbc, screenshotID)
	if err != nil {
		return nil, &PersistenceError{Op: "get screenshot", Err: err}
	}
	if shot == nil {
		return nil, ErrNotFound
	}
	run, err := s.runs.GetByID(dbc, shot.TestRunID)
	if err != nil {
		return nil, &PersistenceError{Op: "get run", Err: err}
	}
	if run == nil {
		return nil, ErrNotFound
	}

	res, err := s.resolver.Resolve(dbc, run.ApplicationID, shot.ScreenName, &BaselineRef{
		ImageURL:  shot.ActualImageURL,
		Overwrite: true,
	})
	if err != nil {
		return nil, err
	}
	if res.BaselineID == nil {
		return nil, &ValidationError{Field: "actual_image_url", Reason: "screenshot has no image to promote"}
	}
	s.metrics.IncBaselineAction(string(res.Action))

	rows, err := s.baselines.GetByIDs(dbc, []uuid.UUID{*res.BaselineID})
	if err != nil {
		return nil, &PersistenceError{Op: "get baseline", Err: err}
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	s.log.Info("screenshot promoted to baseline",
		"screenshot_id", screenshotID,
		"baseline_id", rows[0].ID,
		"action", res.Action,
	)
	return rows[0], nil
}

func (s *dashboardService) baselinesFor(dbc dbctx.Context, shots []*domain.Screenshot) (map[uuid.UUID]*domain.Baseline, error) {
	seen := map[uuid.UUID]bool{}
	ids := []uuid.UUID{}
	for _, sh := range shots {
		if sh.BaselineID != nil && !seen[*sh.BaselineID] {
			seen[*sh.BaselineID] = true
			ids = append(ids, *sh.BaselineID)
		}
	}
	rows, err := s.baselines.GetByIDs(dbc, ids)
	if err != nil {
		return nil, &PersistenceError{Op: "get baselines", Err: err}
	}
	out := make(map[uuid.UUID]*domain.Baseline, len(rows))
	for _, b := range rows {
		out[b.ID] = b
	}
	return out, nil
}

func viewOf(sh *domain.Screenshot, baselines map[uuid.UUID]*domain.Baseline) ScreenshotView {
	v := ScreenshotView{Screenshot: sh}
	if sh.BaselineID != nil {
		if b, ok := baselines[*sh.BaselineID]; ok {
			u := b.ImageURL
			v.BaselineImageURL = &u
		}
	}
	return v
}
