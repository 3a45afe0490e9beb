package services

import (
	"encoding/base64"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/pixelbuddy-backend/internal/data/repos"
	"github.com/yungbote/pixelbuddy-backend/internal/data/repos/testutil"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/gcp"
)

type harness struct {
	db        *gorm.DB
	bucket    *gcp.MemoryBucket
	apps      repos.ApplicationRepo
	baselines repos.BaselineRepo
	runs      repos.TestRunRepo
	shots     repos.ScreenshotRepo

	registry   ApplicationRegistry
	resolver   BaselineResolver
	aggregator RunAggregator
	store      ObjectStore
	ingest     *ingestionService
	dashboard  DashboardService
}

var fixedNow = time.Date(2024, 3, 1, 10, 15, 30, 123_000_000, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testutil.Logger(t)
	gdb := testutil.DB(t)

	h := &harness{
		db:        gdb,
		bucket:    gcp.NewMemoryBucket("screenshots"),
		apps:      repos.NewApplicationRepo(gdb, log),
		baselines: repos.NewBaselineRepo(gdb, log),
		runs:      repos.NewTestRunRepo(gdb, log),
		shots:     repos.NewScreenshotRepo(gdb, log),
	}
	h.registry = NewApplicationRegistry(log, h.apps)
	h.resolver = NewBaselineResolver(log, h.baselines)
	h.aggregator = NewRunAggregator(log, h.runs, h.shots)
	h.store = NewObjectStore(log, h.bucket)
	h.ingest = NewIngestionService(log, h.registry, h.resolver, h.aggregator, h.store, nil).(*ingestionService)
	h.ingest.now = func() time.Time { return fixedNow }
	h.dashboard = NewDashboardService(log, h.apps, h.baselines, h.runs, h.shots, h.resolver, nil)
	return h
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func dataURI(s string) string {
	return "data:image/png;base64," + b64(s)
}

func ptrFloat(v float64) *float64 { return &v }
