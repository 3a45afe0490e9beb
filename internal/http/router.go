package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pixelbuddy-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pixelbuddy-backend/internal/http/middleware"
	"github.com/yungbote/pixelbuddy-backend/internal/observability"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log                *logger.Logger
	Metrics            *observability.Metrics
	ServiceName        string
	TracingEnabled     bool
	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	SubmissionHandler  *httpH.SubmissionHandler
	ApplicationHandler *httpH.ApplicationHandler
	RunHandler         *httpH.RunHandler
	ScreenshotHandler  *httpH.ScreenshotHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSAllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Submission (CI clients)
	if cfg.SubmissionHandler != nil {
		fn := r.Group("/functions/v1")
		if cfg.MaxBodyBytes > 0 {
			fn.Use(httpMW.LimitRequestBody(cfg.MaxBodyBytes))
		}
		fn.POST("/submit-test-results-with-images", cfg.SubmissionHandler.SubmitWithImages)
		fn.OPTIONS("/submit-test-results-with-images", httpMW.Preflight)
		fn.POST("/submit-test-results", cfg.SubmissionHandler.SubmitHosted)
		fn.OPTIONS("/submit-test-results", httpMW.Preflight)
	}

	api := r.Group("/api")
	{
		// Applications
		if cfg.ApplicationHandler != nil {
			api.GET("/applications", cfg.ApplicationHandler.ListApplications)
			api.GET("/applications/:id", cfg.ApplicationHandler.GetApplication)
			api.GET("/applications/:id/runs", cfg.ApplicationHandler.ListRuns)
		}

		// Runs
		if cfg.RunHandler != nil {
			api.GET("/runs/:id", cfg.RunHandler.GetRun)
		}

		// Screenshots
		if cfg.ScreenshotHandler != nil {
			api.GET("/screenshots/:id", cfg.ScreenshotHandler.GetScreenshot)
			api.POST("/screenshots/:id/baseline", cfg.ScreenshotHandler.PromoteToBaseline)
		}
	}

	return r
}
