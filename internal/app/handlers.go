package app

import (
	httpH "github.com/yungbote/pixelbuddy-backend/internal/http/handlers"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

type Handlers struct {
	Submission  *httpH.SubmissionHandler
	Application *httpH.ApplicationHandler
	Run         *httpH.RunHandler
	Screenshot  *httpH.ScreenshotHandler
	Health      *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, svcs Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Submission:  httpH.NewSubmissionHandler(log, svcs.Ingestion, svcs.Idempotent),
		Application: httpH.NewApplicationHandler(svcs.Dashboard),
		Run:         httpH.NewRunHandler(svcs.Dashboard),
		Screenshot:  httpH.NewScreenshotHandler(log, svcs.Dashboard),
		Health:      httpH.NewHealthHandler(db),
	}
}
