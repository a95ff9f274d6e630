package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/response"
	"github.com/stemsi/edulink/internal/service"
	"github.com/stemsi/edulink/internal/validator"
)

// RelationshipHandler links people to students and classes within one school.
// Routes are mounted under /schools/:school_id behind the operator's school scope.
type RelationshipHandler struct {
	linker *service.RelationshipLinkerService
	log    zerolog.Logger
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(linker *service.RelationshipLinkerService, log zerolog.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		linker: linker,
		log:    log.With().Str("component", "relationship_handler").Logger(),
	}
}

// LinkGuardian godoc
// POST /api/v1/schools/:school_id/guardians
// Links a person to a student of the school. Repeating the call updates the link.
func (h *RelationshipHandler) LinkGuardian(c *gin.Context) {
	schoolID, ok := uuidParam(c, "school_id")
	if !ok {
		return
	}

	var req model.LinkGuardianRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.linker.LinkGuardian(c.Request.Context(), service.LinkGuardianInput{
		PersonID:   req.PersonID,
		StudentID:  req.StudentID,
		SchoolID:   schoolID,
		Attributes: req.GuardianAttributes,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, linkStatus(res), res)
}

// LinkStaff godoc
// POST /api/v1/schools/:school_id/staff
// Assigns a person to a class and subject of the school.
func (h *RelationshipHandler) LinkStaff(c *gin.Context) {
	schoolID, ok := uuidParam(c, "school_id")
	if !ok {
		return
	}

	var req model.LinkStaffRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.linker.LinkStaff(c.Request.Context(), service.LinkStaffInput{
		PersonID:   req.PersonID,
		SchoolID:   schoolID,
		Assignment: req.ClassAssignment,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, linkStatus(res), res)
}

// Deactivate godoc
// POST /api/v1/schools/:school_id/relationships/:id/deactivate
func (h *RelationshipHandler) Deactivate(c *gin.Context) {
	schoolID, ok := uuidParam(c, "school_id")
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	rel, err := h.linker.Deactivate(c.Request.Context(), schoolID, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"relationship": rel})
}

func linkStatus(res *model.LinkResult) int {
	if res.Created {
		return http.StatusCreated
	}
	return http.StatusOK
}
