package app

import (
	"github.com/yungbote/pixelbuddy-backend/internal/observability"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/redisx"
	"github.com/yungbote/pixelbuddy-backend/internal/services"
)

type Services struct {
	// Ingestion
	Registry   services.ApplicationRegistry
	Resolver   services.BaselineResolver
	Aggregator services.RunAggregator
	Store      services.ObjectStore
	Ingestion  services.IngestionService
	Idempotent services.IdempotencyGuard

	// Read side
	Dashboard services.DashboardService
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	registry := services.NewApplicationRegistry(log, repos.Application)
	resolver := services.NewBaselineResolver(log, repos.Baseline)
	aggregator := services.NewRunAggregator(log, repos.TestRun, repos.Screenshot)
	store := services.NewObjectStore(log, clients.Bucket)

	var idemStore services.IdempotencyStore
	if clients.Redis != nil {
		idemStore = redisx.NewIdempotencyStore(clients.Redis, "", cfg.IdempotencyTTL)
	}

	return Services{
		Registry:   registry,
		Resolver:   resolver,
		Aggregator: aggregator,
		Store:      store,
		Ingestion:  services.NewIngestionService(log, registry, resolver, aggregator, store, metrics),
		Idempotent: services.NewIdempotencyGuard(log, idemStore, metrics),
		Dashboard: services.NewDashboardService(
			log,
			repos.Application,
			repos.Baseline,
			repos.TestRun,
			repos.Screenshot,
			resolver,
			metrics,
		),
	}
}
