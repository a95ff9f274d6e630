package service

import (
	"context"
	"errors"

	"github.com/stemsi/edulink/internal/apperror"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/repository"
)

// StudentService exposes a school's roster so operators can pick the student to link.
// Students are owned by the school; this service never writes them.
type StudentService struct {
	schools  SchoolStore
	students StudentStore
}

// NewStudentService creates a new StudentService.
func NewStudentService(schools SchoolStore, students StudentStore) *StudentService {
	return &StudentService{schools: schools, students: students}
}

// GetSchool retrieves a school by ID.
func (s *StudentService) GetSchool(ctx context.Context, schoolID string) (*model.School, error) {
	if err := requireIDs(namedID{"school_id", schoolID}); err != nil {
		return nil, err
	}
	school, err := s.schools.GetByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, repository.ErrSchoolNotFound) {
			return nil, apperror.NotFound("school not found", err)
		}
		return nil, apperror.Backend(err)
	}
	return school, nil
}

// ListStudents returns the students of a school ordered by name.
func (s *StudentService) ListStudents(ctx context.Context, schoolID string) ([]model.Student, error) {
	if _, err := s.GetSchool(ctx, schoolID); err != nil {
		return nil, err
	}
	students, err := s.students.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, apperror.Backend(err)
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// GetStudent retrieves a student of the given school. A student enrolled elsewhere is
// reported as not found.
func (s *StudentService) GetStudent(ctx context.Context, schoolID, studentID string) (*model.Student, error) {
	if err := requireIDs(namedID{"school_id", schoolID}, namedID{"student_id", studentID}); err != nil {
		return nil, err
	}
	st, err := s.students.GetInSchool(ctx, schoolID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, apperror.NotFound("student not found in school", err)
		}
		return nil, apperror.Backend(err)
	}
	return st, nil
}
