package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pixelbuddy-backend/internal/http/response"
	"github.com/yungbote/pixelbuddy-backend/internal/platform/apierr"
	"github.com/yungbote/pixelbuddy-backend/internal/services"
)

// readError maps a read-side service error to an HTTP status.
func readError(err error) *apierr.Error {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.As(err, &ve):
		return apierr.New(http.StatusBadRequest, services.KindValidation, err)
	default:
		return apierr.New(http.StatusInternalServerError, services.ErrorKind(err), err)
	}
}

func respondReadError(c *gin.Context, err error) {
	ae := readError(err)
	_ = c.Error(err)
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return uuid.Nil, false
	}
	return id, true
}
