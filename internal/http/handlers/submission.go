package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pixelbuddy-backend/internal/http/response"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/apierr"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/logger"
	"github.com/yungbote/pixelbuddy-backend/internal/services"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

type SubmissionResponse struct {
	Success       bool                         `json:"success"`
	TestRunID     uuid.UUID                    `json:"testRunId"`
	ApplicationID uuid.UUID                    `json:"applicationId"`
	Status        string                       `json:"status"`
	Message       string                       `json:"message"`
	Processed     int                          `json:"processed"`
	Failures      []services.ScreenshotFailure `json:"failures"`
}

type SubmissionHandler struct {
	log    *logger.Logger
	ingest services.IngestionService
	guard  services.IdempotencyGuard
}

func NewSubmissionHandler(log *logger.Logger, ingest services.IngestionService, guard services.IdempotencyGuard) *SubmissionHandler {
	return &SubmissionHandler{
		log:    log.With("handler", "SubmissionHandler"),
		ingest: ingest,
		guard:  guard,
	}
}

// POST /functions/v1/submit-test-results-with-images
func (h *SubmissionHandler) SubmitWithImages(c *gin.Context) {
	h.submit(c, services.ModeInline)
}

// POST /functions/v1/submit-test-results
func (h *SubmissionHandler) SubmitHosted(c *gin.Context) {
	h.submit(c, services.ModeHosted)
}

func (h *SubmissionHandler) submit(c *gin.Context, mode services.SubmissionMode) {
	var sub services.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondFunctionError(c, http.StatusRequestEntityTooLarge, "request_too_large", fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.fail(c, &services.ValidationError{Field: "body", Reason: "invalid JSON: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	body, replayed, err := h.guard.Run(ctx, string(mode), c.GetHeader(headerIdempotencyKey), func() ([]byte, error) {
		res, err := h.ingest.Submit(ctx, mode, sub)
		if err != nil {
			return nil, err
		}
		failures := res.Failures
		if failures == nil {
			failures = []services.ScreenshotFailure{}
		}
		return json.Marshal(SubmissionResponse{
			Success:       true,
			TestRunID:     res.TestRunID,
			ApplicationID: res.ApplicationID,
			Status:        string(res.RunStatus),
			Message:       fmt.Sprintf("Processed %d screenshots", res.Processed),
			Processed:     res.Processed,
			Failures:      failures,
		})
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if replayed {
		c.Header(headerReplayed, "true")
	}
	response.RespondRawJSON(c, http.StatusOK, body)
}

// fail answers any batch-aborting error with 500, except a concurrent
// duplicate submission which gets 409.
func (h *SubmissionHandler) fail(c *gin.Context, err error) {
	ae := apierr.New(http.StatusInternalServerError, services.ErrorKind(err), err)
	if errors.Is(err, services.ErrSubmissionInFlight) {
		ae = apierr.New(http.StatusConflict, "idempotency_conflict", err)
	}
	_ = c.Error(err)
	response.RespondFunctionError(c, ae.Status, ae.Code, ae.Err)
}
