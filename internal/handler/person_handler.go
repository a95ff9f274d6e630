package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/response"
	"github.com/stemsi/edulink/internal/service"
	"github.com/stemsi/edulink/internal/validator"
)

// PersonHandler serves person lookup, registration and the cross-school views.
type PersonHandler struct {
	registry *service.Registry
	persons  *service.PersonService
	log      zerolog.Logger
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(registry *service.Registry, persons *service.PersonService, log zerolog.Logger) *PersonHandler {
	return &PersonHandler{
		registry: registry,
		persons:  persons,
		log:      log.With().Str("component", "person_handler").Logger(),
	}
}

// Search godoc
// GET /api/v1/persons/search?q=
// Typeahead over name, email and phone. Terms shorter than two characters return nothing.
func (h *PersonHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if utf8.RuneCountInString(term) < service.MinSearchTermLength {
		response.Success(c, http.StatusOK, gin.H{"candidates": []model.PersonCandidate{}})
		return
	}

	candidates := h.registry.SearchExistingPeople(c.Request.Context(), term)
	response.Success(c, http.StatusOK, gin.H{"candidates": candidates})
}

// CheckExisting godoc
// POST /api/v1/persons/check-existing
// Exact lookup by email (case-insensitive) or phone. match is null when nobody matches.
func (h *PersonHandler) CheckExisting(c *gin.Context) {
	var req model.CheckExistingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	match := h.registry.CheckExistingPerson(c.Request.Context(), req.Email, req.Phone)
	response.Success(c, http.StatusOK, gin.H{"match": match})
}

// Register godoc
// POST /api/v1/persons
// Creates a person, or returns the existing one with the same email or phone.
func (h *PersonHandler) Register(c *gin.Context) {
	var req model.RegisterPersonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.persons.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, res)
}

// Get godoc
// GET /api/v1/persons/:id
func (h *PersonHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p, err := h.persons.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"person": p})
}

// UpdateContact godoc
// PUT /api/v1/persons/:id/contact
// Replaces email, phone, profession and address.
func (h *PersonHandler) UpdateContact(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateContactRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.persons.UpdateContact(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"person": p})
}

// Relationships godoc
// GET /api/v1/persons/:id/relationships
// Active guardian and staff relationships across every school.
func (h *PersonHandler) Relationships(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"relationships": h.registry.GetPersonRelationships(c.Request.Context(), id)})
}

// Children godoc
// GET /api/v1/persons/:id/children
func (h *PersonHandler) Children(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"children": h.registry.View.ChildrenOf(c.Request.Context(), id)})
}

// Assignments godoc
// GET /api/v1/persons/:id/assignments
// Active class assignments of a staff member across schools.
func (h *PersonHandler) Assignments(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": h.registry.View.AssignmentsOf(c.Request.Context(), id)})
}

// Statistics godoc
// GET /api/v1/persons/:id/statistics
func (h *PersonHandler) Statistics(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"statistics": h.registry.GetPersonStatistics(c.Request.Context(), id)})
}
