package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/apperror"
	"github.com/stemsi/edulink/internal/repository"
	"github.com/stemsi/edulink/internal/response"
)

// writeError maps a classified service error onto the response envelope. The
// operator-facing message goes into fields.detail; causes are logged, never returned.
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	detail := ""
	var ae *apperror.Error
	if errors.As(err, &ae) {
		detail = ae.Message
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		response.FailWithDetail(c, http.StatusBadRequest, response.ErrValidation, detail)
	case errors.Is(err, apperror.ErrNotFound):
		response.FailWithDetail(c, http.StatusNotFound, response.ErrNotFound, detail)
	case errors.Is(err, repository.ErrPrimaryContactTaken):
		response.Fail(c, http.StatusConflict, response.ErrPrimaryContactTaken)
	case errors.Is(err, apperror.ErrConflict):
		response.FailWithDetail(c, http.StatusConflict, response.ErrConflict, detail)
	case errors.Is(err, apperror.ErrBackendUnavailable):
		log.Error().Err(err).Str("path", c.FullPath()).Msg("backend unavailable")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrBackendUnavailable)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unclassified error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// uuidParam reads a UUID route parameter, answering 400 INVALID_ID when malformed.
func uuidParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return id, true
}
