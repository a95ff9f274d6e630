package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/response"
	"github.com/stemsi/edulink/internal/service"
)

// IdentityFlagHandler serves the review queue of registrations that matched an existing
// person's contact details under a different name.
type IdentityFlagHandler struct {
	persons *service.PersonService
	log     zerolog.Logger
}

// NewIdentityFlagHandler creates a new IdentityFlagHandler.
func NewIdentityFlagHandler(persons *service.PersonService, log zerolog.Logger) *IdentityFlagHandler {
	return &IdentityFlagHandler{
		persons: persons,
		log:     log.With().Str("component", "identity_flag_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/identity-flags?limit=
func (h *IdentityFlagHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultFlagListLimit)))

	flags, err := h.persons.ListOpenFlags(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"flags": flags})
}

// Resolve godoc
// POST /api/v1/identity-flags/:id/resolve
func (h *IdentityFlagHandler) Resolve(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.persons.ResolveFlag(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "identity flag resolved"})
}
