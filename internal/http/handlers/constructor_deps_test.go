package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewHandlers(t *testing.T) {
	log := newTestLogger(t)
	if NewSubmissionHandler(log, nil, nil) == nil {
		t.Fatal("expected non-nil submission handler")
	}
	if NewScreenshotHandler(log, nil) == nil {
		t.Fatal("expected non-nil screenshot handler")
	}
	if NewApplicationHandler(nil) == nil || NewRunHandler(nil) == nil || NewHealthHandler(nil) == nil {
		t.Fatal("expected non-nil handlers")
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	cases := []struct {
		name   string
		db     Pinger
		status int
	}{
		{name: "no db", db: nil, status: http.StatusOK},
		{name: "db up", db: pingerFunc(func(context.Context) error { return nil }), status: http.StatusOK},
		{name: "db down", db: pingerFunc(func(context.Context) error { return context.DeadlineExceeded }), status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/healthcheck", NewHealthHandler(tc.db).HealthCheck)
			w := serve(r, http.MethodGet, "/healthcheck", "", nil)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
		})
	}
}
