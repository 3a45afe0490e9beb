package services

import (
	"context"
	"strings"

	"github.com/yungbote/pixelbuddy-backend/internal/observability"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

// IdempotencyStore is satisfied by redisx.IdempotencyStore.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) ([]byte, bool, error)
	Begin(ctx context.Context, key string) (bool, error)
	Complete(ctx context.Context, key string, response []byte) error
	Abort(ctx context.Context, key string) error
}

// IdempotencyGuard replays the stored response for a repeated key instead of
// running the submission again. With no store or no key it just runs fn.
type IdempotencyGuard interface {
	Run(ctx context.Context, scope, key string, fn func() ([]byte, error)) (body []byte, replayed bool, err error)
}

type idempotencyGuard struct {
	log     *logger.Logger
	store   IdempotencyStore
	metrics *observability.Metrics
}

func NewIdempotencyGuard(log *logger.Logger, store IdempotencyStore, metrics *observability.Metrics) IdempotencyGuard {
	return &idempotencyGuard{
		log:     log.With("service", "IdempotencyGuard"),
		store:   store,
		metrics: metrics,
	}
}

func (g *idempotencyGuard) Run(ctx context.Context, scope, key string, fn func() ([]byte, error)) ([]byte, bool, error) {
	key = strings.TrimSpace(key)
	if g.store == nil || key == "" {
		body, err := fn()
		return body, false, err
	}
	full := scope + ":" + key

	cached, found, err := g.store.Lookup(ctx, full)
	if err != nil {
		// Fail open: a store outage must not block ingestion.
		g.log.Warn("idempotency lookup failed; running unguarded", "idempotency_key", full, "error", err)
		body, ferr := fn()
		return body, false, ferr
	}
	if found {
		g.metrics.IncIdempotentReplay()
		g.log.Info("replaying stored submission response", "idempotency_key", full)
		return cached, true, nil
	}

	acquired, err := g.store.Begin(ctx, full)
	if err != nil {
		g.log.Warn("idempotency lock failed; running unguarded", "idempotency_key", full, "error", err)
		body, ferr := fn()
		return body, false, ferr
	}
	if !acquired {
		return nil, false, ErrSubmissionInFlight
	}
	// A holder may have completed between Lookup and Begin.
	if cached, found, err := g.store.Lookup(ctx, full); err == nil && found {
		if aerr := g.store.Abort(context.WithoutCancel(ctx), full); aerr != nil {
			g.log.Warn("idempotency abort failed", "idempotency_key", full, "error", aerr)
		}
		g.metrics.IncIdempotentReplay()
		g.log.Info("replaying stored submission response", "idempotency_key", full)
		return cached, true, nil
	}

	body, err := fn()
	if err != nil {
		if aerr := g.store.Abort(context.WithoutCancel(ctx), full); aerr != nil {
			g.log.Warn("idempotency abort failed", "idempotency_key", full, "error", aerr)
		}
		return nil, false, err
	}
	if cerr := g.store.Complete(context.WithoutCancel(ctx), full, body); cerr != nil {
		g.log.Warn("idempotency complete failed", "idempotency_key", full, "error", cerr)
	}
	return body, false, nil
}
