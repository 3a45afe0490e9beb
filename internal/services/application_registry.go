package services

import (
	"errors"
	"strings"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos"
	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/dbctx"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

// ApplicationRegistry maps an application name to its row, creating it on
// first sight.
type ApplicationRegistry interface {
	Resolve(dbc dbctx.Context, name string, description *string) (*domain.Application, error)
}

type applicationRegistry struct {
	log  *logger.Logger
	apps repos.ApplicationRepo
}

func NewApplicationRegistry(log *logger.Logger, apps repos.ApplicationRepo) ApplicationRegistry {
	return &applicationRegistry{
		log:  log.With("service", "ApplicationRegistry"),
		apps: apps,
	}
}

func (r *applicationRegistry) Resolve(dbc dbctx.Context, name string, description *string) (*domain.Application, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "applicationName", Reason: "required"}
	}

	existing, err := r.apps.GetByName(dbc, name)
	if err != nil {
		return nil, &PersistenceError{Op: "lookup application", Err: err}
	}
	if existing != nil {
		return existing, nil
	}

	created, err := r.apps.Create(dbc, &domain.Application{Name: name, Description: description})
	if err == nil {
		r.log.Info("application registered", "application_id", created.ID, "name", name)
		return created, nil
	}
	if !repos.IsDuplicate(err) {
		return nil, &PersistenceError{Op: "create application", Err: err}
	}

	// Lost a concurrent first-submission race; the winner's row is authoritative.
	winner, ferr := r.apps.GetByName(dbc, name)
	if ferr != nil {
		return nil, &PersistenceError{Op: "refetch application", Err: ferr}
	}
	if winner == nil {
		return nil, &PersistenceError{Op: "refetch application", Err: errors.New("duplicate reported but no row found")}
	}
	r.log.Debug("application create lost race; using existing row", "application_id", winner.ID, "name", name)
	return winner, nil
}
