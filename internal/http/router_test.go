package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpH "github.com/yungbote/pixelbuddy-backend/internal/http/handlers"
	"github.com/yungbote/pixelbuddy-backend/internal/observability"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
	"github.com/yungbote/pixelbuddy-backend/internal/services"
)

type stubIngestion struct{ calls int }

func (s *stubIngestion) Submit(context.Context, services.SubmissionMode, services.Submission) (*services.IngestionResult, error) {
	s.calls++
	return &services.IngestionResult{Processed: 1}, nil
}

func newTestRouter(t *testing.T, m *observability.Metrics) (*gin.Engine, *stubIngestion) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	ingest := &stubIngestion{}
	return NewRouter(RouterConfig{
		Log:                log,
		Metrics:            m,
		ServiceName:        "pixelbuddy-test",
		CORSAllowedOrigins: []string{"*"},
		MaxBodyBytes:       1 << 20,
		SubmissionHandler:  httpH.NewSubmissionHandler(log, ingest, services.NewIdempotencyGuard(log, nil, nil)),
		HealthHandler:      httpH.NewHealthHandler(nil),
	}), ingest
}

func TestRouterPreflightRoutes(t *testing.T) {
	r, ingest := newTestRouter(t, nil)
	for _, path := range []string{
		"/functions/v1/submit-test-results-with-images",
		"/functions/v1/submit-test-results",
	} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, w.Body.String(), path)
	}
	assert.Zero(t, ingest.calls)
}

func TestRouterSubmitAndHealth(t *testing.T) {
	r, ingest := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/submit-test-results",
		strings.NewReader(`{"applicationName":"web","screenshots":[{"screenName":"a","actualImageUrl":"u"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://ci.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, 1, ingest.calls)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRouterMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	r, _ = newTestRouter(t, observability.New())
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pixelbuddy_")
}
