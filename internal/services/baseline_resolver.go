package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos"
	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

// BaselineRef is a caller-supplied baseline image reference. Overwrite is set
// when new bytes were just written for it, which refreshes an existing active
// baseline in place.
type BaselineRef struct {
	ImageURL  string
	Overwrite bool
}

type BaselineAction string

const (
	BaselineNone        BaselineAction = "none"
	BaselineCreated     BaselineAction = "created"
	BaselineOverwritten BaselineAction = "overwritten"
	BaselineReused      BaselineAction = "reused"
)

type BaselineResolution struct {
	BaselineID *uuid.UUID
	Action     BaselineAction
}

// BaselineResolver owns the single-active-baseline policy per
// (application, screen). The active row is a pointer, not a history.
type BaselineResolver interface {
	Resolve(dbc dbctx.Context, applicationID uuid.UUID, screenName string, ref *BaselineRef) (BaselineResolution, error)
}

type baselineResolver struct {
	log       *logger.Logger
	baselines repos.BaselineRepo
}

func NewBaselineResolver(log *logger.Logger, baselines repos.BaselineRepo) BaselineResolver {
	return &baselineResolver{
		log:       log.With("service", "BaselineResolver"),
		baselines: baselines,
	}
}

func (r *baselineResolver) Resolve(dbc dbctx.Context, applicationID uuid.UUID, screenName string, ref *BaselineRef) (BaselineResolution, error) {
	if ref == nil || strings.TrimSpace(ref.ImageURL) == "" {
		return BaselineResolution{Action: BaselineNone}, nil
	}

	active, err := r.baselines.GetActive(dbc, applicationID, screenName)
	if err != nil {
		return BaselineResolution{}, &PersistenceError{Op: "lookup baseline", Err: err}
	}
	if active != nil {
		return r.refresh(dbc, active, ref)
	}

	created, err := r.baselines.Create(dbc, &domain.Baseline{
		ApplicationID: applicationID,
		ScreenName:    screenName,
		ImageURL:      ref.ImageURL,
		IsActive:      true,
	})
	if err == nil {
		r.log.Info("baseline created", "application_id", applicationID, "screen_name", screenName, "baseline_id", created.ID)
		return BaselineResolution{BaselineID: &created.ID, Action: BaselineCreated}, nil
	}
	if !repos.IsDuplicate(err) {
		return BaselineResolution{}, &PersistenceError{Op: "create baseline", Err: err}
	}

	winner, err := r.baselines.GetActive(dbc, applicationID, screenName)
	if err != nil {
		return BaselineResolution{}, &PersistenceError{Op: "refetch baseline", Err: err}
	}
	if winner == nil {
		return BaselineResolution{}, &PersistenceError{Op: "refetch baseline", Err: errors.New("duplicate reported but no active baseline found")}
	}
	r.log.Debug("baseline create lost race; using active row", "baseline_id", winner.ID, "screen_name", screenName)
	return r.refresh(dbc, winner, ref)
}

func (r *baselineResolver) refresh(dbc dbctx.Context, active *domain.Baseline, ref *BaselineRef) (BaselineResolution, error) {
	id := active.ID
	if !ref.Overwrite {
		return BaselineResolution{BaselineID: &id, Action: BaselineReused}, nil
	}
	if active.ImageURL != ref.ImageURL {
		if err := r.baselines.UpdateImageURL(dbc, id, ref.ImageURL); err != nil {
			return BaselineResolution{}, &PersistenceError{Op: "update baseline", Err: err}
		}
	}
	return BaselineResolution{BaselineID: &id, Action: BaselineOverwritten}, nil
}
