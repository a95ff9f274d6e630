package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/response"
	"github.com/stemsi/edulink/internal/service"
)

// SchoolHandler serves a school's roster to operators scoped to that school.
type SchoolHandler struct {
	students *service.StudentService
	log      zerolog.Logger
}

// NewSchoolHandler creates a new SchoolHandler.
func NewSchoolHandler(students *service.StudentService, log zerolog.Logger) *SchoolHandler {
	return &SchoolHandler{
		students: students,
		log:      log.With().Str("component", "school_handler").Logger(),
	}
}

// GetSchool godoc
// GET /api/v1/schools/:school_id
func (h *SchoolHandler) GetSchool(c *gin.Context) {
	schoolID, ok := uuidParam(c, "school_id")
	if !ok {
		return
	}

	school, err := h.students.GetSchool(c.Request.Context(), schoolID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"school": school})
}

// ListStudents godoc
// GET /api/v1/schools/:school_id/students
func (h *SchoolHandler) ListStudents(c *gin.Context) {
	schoolID, ok := uuidParam(c, "school_id")
	if !ok {
		return
	}

	students, err := h.students.ListStudents(c.Request.Context(), schoolID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// GetStudent godoc
// GET /api/v1/schools/:school_id/students/:id
func (h *SchoolHandler) GetStudent(c *gin.Context) {
	schoolID, ok := uuidParam(c, "school_id")
	if !ok {
		return
	}
	studentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	student, err := h.students.GetStudent(c.Request.Context(), schoolID, studentID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"student": student})
}
