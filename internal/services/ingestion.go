package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/observability"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

// SubmissionMode selects how image content reaches the pipeline.
type SubmissionMode string

const (
	// ModeInline carries base64 image bytes that are uploaded by the service.
	ModeInline SubmissionMode = "with_images"
	// ModeHosted carries URLs of images that are already hosted.
	ModeHosted SubmissionMode = "hosted"
)

type ScreenshotSubmission struct {
	ScreenName string `json:"screenName"`
	Status     string `json:"status"`

	ActualImage   string `json:"actualImage,omitempty"`
	BaselineImage string `json:"baselineImage,omitempty"`
	DiffImage     string `json:"diffImage,omitempty"`

	ActualImageURL   string `json:"actualImageUrl,omitempty"`
	BaselineImageURL string `json:"baselineImageUrl,omitempty"`
	DiffImageURL     string `json:"diffImageUrl,omitempty"`

	DifferencePercentage *float64 `json:"differencePercentage,omitempty"`
}

type Submission struct {
	ApplicationName        string                 `json:"applicationName"`
	ApplicationDescription *string                `json:"applicationDescription,omitempty"`
	Screenshots            []ScreenshotSubmission `json:"screenshots"`
	Metadata               map[string]any         `json:"metadata,omitempty"`
}

type ScreenshotFailure struct {
	Index      int    `json:"index"`
	ScreenName string `json:"screenName"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
}

type IngestionResult struct {
	TestRunID     uuid.UUID
	ApplicationID uuid.UUID
	RunStatus     domain.Status
	Processed     int
	Failures      []ScreenshotFailure
}

// IngestionService runs one submitted batch end to end. Setup errors abort
// the batch; a failing screenshot is reported and the rest continue.
type IngestionService interface {
	Submit(ctx context.Context, mode SubmissionMode, sub Submission) (*IngestionResult, error)
}

type ingestionService struct {
	log        *logger.Logger
	registry   ApplicationRegistry
	resolver   BaselineResolver
	aggregator RunAggregator
	store      ObjectStore
	metrics    *observability.Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

func NewIngestionService(
	log *logger.Logger,
	registry ApplicationRegistry,
	resolver BaselineResolver,
	aggregator RunAggregator,
	store ObjectStore,
	metrics *observability.Metrics,
) IngestionService {
	return &ingestionService{
		log:        log.With("service", "IngestionService"),
		registry:   registry,
		resolver:   resolver,
		aggregator: aggregator,
		store:      store,
		metrics:    metrics,
		tracer:     observability.Tracer(),
		now:        time.Now,
	}
}

// screenshotOutcome is the per-item result folded into IngestionResult.
type screenshotOutcome struct {
	index      int
	screenName string
	id         uuid.UUID
	err        error
}

type batch struct {
	mode  SubmissionMode
	app   *domain.Application
	run   *domain.TestRun
	stamp string
	// objectNames is parallel to the submitted screenshots.
	objectNames []string
}

func (s *ingestionService) Submit(ctx context.Context, mode SubmissionMode, sub Submission) (res *IngestionResult, err error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "ingestion.submit", trace.WithAttributes(
		attribute.String("pixelbuddy.mode", string(mode)),
		attribute.Int("pixelbuddy.screenshots", len(sub.Screenshots)),
	))
	defer func() {
		outcome := "ok"
		switch {
		case err != nil:
			outcome = ErrorKind(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case len(res.Failures) > 0:
			outcome = "partial"
		}
		s.metrics.ObserveSubmission(string(mode), outcome, time.Since(start))
		span.End()
	}()

	statuses, err := validateSubmission(mode, &sub)
	if err != nil {
		s.log.Warn("submission rejected", "mode", mode, "error", err)
		return nil, err
	}

	dbc := dbctx.Of(ctx)
	app, err := s.registry.Resolve(dbc, sub.ApplicationName, sub.ApplicationDescription)
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, st := range statuses {
		if st == domain.StatusFailed {
			failed++
		}
	}
	run, err := s.aggregator.CreateRun(dbc, CreateRunInput{
		ApplicationID: app.ID,
		Total:         len(sub.Screenshots),
		Failed:        failed,
		Metadata:      sub.Metadata,
		StartedAt:     start,
		CompletedAt:   start,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("pixelbuddy.application_id", app.ID.String()),
		attribute.String("pixelbuddy.test_run_id", run.ID.String()),
	)
	s.log.Info("test run created",
		"mode", mode,
		"application_id", app.ID,
		"test_run_id", run.ID,
		"status", run.Status,
		"total", run.TotalScreenshots,
		"failed", run.FailedScreenshots,
	)

	screenNames := make([]string, len(sub.Screenshots))
	for i := range sub.Screenshots {
		screenNames[i] = sub.Screenshots[i].ScreenName
	}
	b := batch{
		mode:        mode,
		app:         app,
		run:         run,
		stamp:       BatchTimestamp(start),
		objectNames: RunObjectNames(screenNames),
	}
	outcomes := make([]screenshotOutcome, 0, len(sub.Screenshots))
	for i := range sub.Screenshots {
		outcomes = append(outcomes, s.processScreenshot(ctx, b, i, sub.Screenshots[i], statuses[i]))
	}

	res = &IngestionResult{
		TestRunID:     run.ID,
		ApplicationID: app.ID,
		RunStatus:     run.Status,
		Failures:      []ScreenshotFailure{},
	}
	for _, o := range outcomes {
		if o.err == nil {
			res.Processed++
			continue
		}
		res.Failures = append(res.Failures, ScreenshotFailure{
			Index:      o.index,
			ScreenName: o.screenName,
			Kind:       ErrorKind(o.err),
			Reason:     o.err.Error(),
		})
	}

	s.log.Info("submission processed",
		"mode", mode,
		"test_run_id", run.ID,
		"processed", res.Processed,
		"failures", len(res.Failures),
		"duration", time.Since(start),
	)
	return res, nil
}

func (s *ingestionService) processScreenshot(ctx context.Context, b batch, index int, in ScreenshotSubmission, status domain.Status) screenshotOutcome {
	ctx, span := s.tracer.Start(ctx, "ingestion.screenshot", trace.WithAttributes(
		attribute.Int("pixelbuddy.index", index),
		attribute.String("pixelbuddy.screen_name", in.ScreenName),
	))
	defer span.End()

	out := screenshotOutcome{index: index, screenName: in.ScreenName}
	var (
		shot *domain.Screenshot
		err  error
	)
	switch b.mode {
	case ModeInline:
		shot, err = s.processInline(ctx, b, index, in, status)
	default:
		shot, err = s.processHosted(ctx, b, in, status)
	}
	outcome := "ok"
	if err != nil {
		outcome = ErrorKind(err)
		out.err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("screenshot failed",
			"test_run_id", b.run.ID,
			"index", index,
			"screen_name", in.ScreenName,
			"kind", outcome,
			"error", err,
		)
	} else {
		out.id = shot.ID
	}
	s.metrics.IncScreenshot(string(b.mode), string(status), outcome)
	return out
}

func (s *ingestionService) processInline(ctx context.Context, b batch, index int, in ScreenshotSubmission, status domain.Status) (*domain.Screenshot, error) {
	objectName := b.objectNames[index]
	field := func(name string) string { return fmt.Sprintf("screenshots[%d].%s", index, name) }

	actual, err := DecodeImage(field("actualImage"), in.ActualImage)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveUploadBytes("actual", len(actual.Bytes))
	actualURL, err := s.store.Put(ctx, ActualImagePath(b.app.ID, b.run.ID, objectName, b.stamp), actual.Bytes, actual.ContentType)
	if err != nil {
		return nil, err
	}

	var diffURL *string
	if strings.TrimSpace(in.DiffImage) != "" {
		diff, err := DecodeImage(field("diffImage"), in.DiffImage)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveUploadBytes("diff", len(diff.Bytes))
		u, err := s.store.Put(ctx, DiffImagePath(b.app.ID, b.run.ID, objectName, b.stamp), diff.Bytes, diff.ContentType)
		if err != nil {
			return nil, err
		}
		diffURL = &u
	}

	var ref *BaselineRef
	if strings.TrimSpace(in.BaselineImage) != "" {
		base, err := DecodeImage(field("baselineImage"), in.BaselineImage)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveUploadBytes("baseline", len(base.Bytes))
		u, err := s.store.Put(ctx, BaselineImagePath(b.app.ID, SanitizeScreenName(in.ScreenName)), base.Bytes, base.ContentType)
		if err != nil {
			return nil, err
		}
		ref = &BaselineRef{ImageURL: u, Overwrite: true}
	}

	return s.record(ctx, b, in, status, ref, actualURL, diffURL)
}

func (s *ingestionService) processHosted(ctx context.Context, b batch, in ScreenshotSubmission, status domain.Status) (*domain.Screenshot, error) {
	var diffURL *string
	if u := strings.TrimSpace(in.DiffImageURL); u != "" {
		diffURL = &u
	}
	var ref *BaselineRef
	if u := strings.TrimSpace(in.BaselineImageURL); u != "" {
		ref = &BaselineRef{ImageURL: u}
	}
	return s.record(ctx, b, in, status, ref, strings.TrimSpace(in.ActualImageURL), diffURL)
}

func (s *ingestionService) record(
	ctx context.Context,
	b batch,
	in ScreenshotSubmission,
	status domain.Status,
	ref *BaselineRef,
	actualURL string,
	diffURL *string,
) (*domain.Screenshot, error) {
	dbc := dbctx.Of(ctx)
	resolution, err := s.resolver.Resolve(dbc, b.app.ID, in.ScreenName, ref)
	if err != nil {
		return nil, err
	}
	if resolution.Action != BaselineNone {
		s.metrics.IncBaselineAction(string(resolution.Action))
	}
	return s.aggregator.RecordScreenshot(dbc, RecordScreenshotInput{
		TestRunID:            b.run.ID,
		ScreenName:           in.ScreenName,
		BaselineID:           resolution.BaselineID,
		ActualImageURL:       actualURL,
		DiffImageURL:         diffURL,
		DifferencePercentage: in.DifferencePercentage,
		Status:               status,
	})
}

// validateSubmission normalizes statuses and rejects the batch before any
// write. The returned slice is parallel to sub.Screenshots.
func validateSubmission(mode SubmissionMode, sub *Submission) ([]domain.Status, error) {
	if mode != ModeInline && mode != ModeHosted {
		return nil, &ValidationError{Field: "mode", Reason: fmt.Sprintf("unsupported submission mode %q", mode)}
	}
	sub.ApplicationName = strings.TrimSpace(sub.ApplicationName)
	if sub.ApplicationName == "" {
		return nil, &ValidationError{Field: "applicationName", Reason: "required"}
	}
	if len(sub.Screenshots) == 0 {
		return nil, &ValidationError{Field: "screenshots", Reason: "at least one screenshot is required"}
	}

	statuses := make([]domain.Status, len(sub.Screenshots))
	for i := range sub.Screenshots {
		sc := &sub.Screenshots[i]
		prefix := fmt.Sprintf("screenshots[%d]", i)
		if strings.TrimSpace(sc.ScreenName) == "" {
			return nil, &ValidationError{Field: prefix + ".screenName", Reason: "required"}
		}
		st := domain.Status(strings.ToLower(strings.TrimSpace(sc.Status)))
		if st == "" {
			st = domain.StatusPending
		}
		if !st.Valid() {
			return nil, &ValidationError{Field: prefix + ".status", Reason: fmt.Sprintf("must be passed, failed or pending, got %q", sc.Status)}
		}
		statuses[i] = st

		switch mode {
		case ModeInline:
			if strings.TrimSpace(sc.ActualImage) == "" {
				return nil, &ValidationError{Field: prefix + ".actualImage", Reason: "required"}
			}
		case ModeHosted:
			if strings.TrimSpace(sc.ActualImageURL) == "" {
				return nil, &ValidationError{Field: prefix + ".actualImageUrl", Reason: "required"}
			}
		}
		if p := sc.DifferencePercentage; p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
			return nil, &ValidationError{Field: prefix + ".differencePercentage", Reason: "must be a finite number"}
		}
	}
	return statuses, nil
}
