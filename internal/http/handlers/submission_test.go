package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pixelbuddy-backend/internal/domain"
	"github.com/yungbote/pixelbuddy-backend/internal/http/middleware"
	"github.com/yungbote/pixelbuddy-backend/internal/services"
)

type fakeIngestion struct {
	calls []services.SubmissionMode
	last  services.Submission
	res   *services.IngestionResult
	err   error
}

func (f *fakeIngestion) Submit(_ context.Context, mode services.SubmissionMode, sub services.Submission) (*services.IngestionResult, error) {
	f.calls = append(f.calls, mode)
	f.last = sub
	return f.res, f.err
}

type memStore struct {
	done   map[string][]byte
	locked map[string]bool
}

func newMemStore() *memStore {
	return &memStore{done: map[string][]byte{}, locked: map[string]bool{}}
}

func (m *memStore) Lookup(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m.done[key]
	return b, ok, nil
}

func (m *memStore) Begin(_ context.Context, key string) (bool, error) {
	if m.locked[key] {
		return false, nil
	}
	m.locked[key] = true
	return true, nil
}

func (m *memStore) Complete(_ context.Context, key string, body []byte) error {
	m.done[key] = body
	delete(m.locked, key)
	return nil
}

func (m *memStore) Abort(_ context.Context, key string) error {
	delete(m.locked, key)
	return nil
}

func newSubmissionRouter(t *testing.T, ingest services.IngestionService, store services.IdempotencyStore, maxBody int64) *gin.Engine {
	t.Helper()
	log := newTestLogger(t)
	h := NewSubmissionHandler(log, ingest, services.NewIdempotencyGuard(log, store, nil))
	r := gin.New()
	if maxBody > 0 {
		r.Use(middleware.LimitRequestBody(maxBody))
	}
	r.POST("/functions/v1/submit-test-results-with-images", h.SubmitWithImages)
	r.POST("/functions/v1/submit-test-results", h.SubmitHosted)
	return r
}

func okResult() *services.IngestionResult {
	return &services.IngestionResult{
		TestRunID:     uuid.New(),
		ApplicationID: uuid.New(),
		RunStatus:     domain.StatusFailed,
		Processed:     2,
		Failures: []services.ScreenshotFailure{
			{Index: 1, ScreenName: "Checkout", Kind: services.KindDecode, Reason: "bad base64"},
		},
	}
}

const validBody = `{"applicationName":"web","screenshots":[{"screenName":"Home","status":"passed","actualImage":"aGk="}]}`

func TestSubmitWithImagesSuccess(t *testing.T) {
	fake := &fakeIngestion{res: okResult()}
	r := newSubmissionRouter(t, fake, nil, 0)

	w := serve(r, http.MethodPost, "/functions/v1/submit-test-results-with-images", validBody, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got SubmissionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, fake.res.TestRunID, got.TestRunID)
	assert.Equal(t, fake.res.ApplicationID, got.ApplicationID)
	assert.Equal(t, "Processed 2 screenshots", got.Message)
	assert.Equal(t, "failed", got.Status)
	require.Len(t, got.Failures, 1)
	assert.Equal(t, "Checkout", got.Failures[0].ScreenName)

	require.Equal(t, []services.SubmissionMode{services.ModeInline}, fake.calls)
	assert.Equal(t, "web", fake.last.ApplicationName)
	require.Len(t, fake.last.Screenshots, 1)
	assert.Equal(t, "aGk=", fake.last.Screenshots[0].ActualImage)
}

func TestSubmitHostedUsesHostedMode(t *testing.T) {
	res := okResult()
	res.Failures = nil
	fake := &fakeIngestion{res: res}
	r := newSubmissionRouter(t, fake, nil, 0)

	body := `{"applicationName":"web","screenshots":[{"screenName":"Home","status":"passed","actualImageUrl":"https://cdn/x.png"}]}`
	w := serve(r, http.MethodPost, "/functions/v1/submit-test-results", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []services.SubmissionMode{services.ModeHosted}, fake.calls)
	assert.Contains(t, w.Body.String(), `"failures":[]`)
}

func TestSubmitErrorsUseFlatBody(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{name: "validation", err: &services.ValidationError{Field: "applicationName", Reason: "required"}, code: services.KindValidation},
		{name: "persistence", err: &services.PersistenceError{Op: "create test run", Err: errors.New("db down")}, code: services.KindPersistence},
		{name: "unknown", err: errors.New("boom"), code: services.KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newSubmissionRouter(t, &fakeIngestion{err: tc.err}, nil, 0)
			w := serve(r, http.MethodPost, "/functions/v1/submit-test-results-with-images", validBody, nil)
			require.Equal(t, http.StatusInternalServerError, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.err.Error(), body["error"])
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestSubmitMalformedJSON(t *testing.T) {
	fake := &fakeIngestion{res: okResult()}
	r := newSubmissionRouter(t, fake, nil, 0)

	w := serve(r, http.MethodPost, "/functions/v1/submit-test-results-with-images", `{"applicationName":`, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), services.KindValidation)
	assert.Empty(t, fake.calls)
}

func TestSubmitBodyTooLarge(t *testing.T) {
	fake := &fakeIngestion{res: okResult()}
	r := newSubmissionRouter(t, fake, nil, 64)

	big := `{"applicationName":"web","screenshots":[{"screenName":"Home","actualImage":"` + strings.Repeat("A", 256) + `"}]}`
	w := serve(r, http.MethodPost, "/functions/v1/submit-test-results-with-images", big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, fake.calls)
}

func TestSubmitIdempotentReplay(t *testing.T) {
	fake := &fakeIngestion{res: okResult()}
	r := newSubmissionRouter(t, fake, newMemStore(), 0)
	hdr := map[string]string{"Idempotency-Key": "ci-build-42"}

	first := serve(r, http.MethodPost, "/functions/v1/submit-test-results-with-images", validBody, hdr)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("Idempotent-Replayed"))

	second := serve(r, http.MethodPost, "/functions/v1/submit-test-results-with-images", validBody, hdr)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Len(t, fake.calls, 1)

	// Keys are scoped per endpoint.
	third := serve(r, http.MethodPost, "/functions/v1/submit-test-results", validBody, hdr)
	require.Equal(t, http.StatusOK, third.Code)
	assert.Len(t, fake.calls, 2)
}

func TestSubmitInFlightConflict(t *testing.T) {
	store := newMemStore()
	store.locked[string(services.ModeInline)+":dup"] = true
	fake := &fakeIngestion{res: okResult()}
	r := newSubmissionRouter(t, fake, store, 0)

	w := serve(r, http.MethodPost, "/functions/v1/submit-test-results-with-images", validBody, map[string]string{"Idempotency-Key": "dup"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "idempotency_conflict")
	assert.Empty(t, fake.calls)
}
