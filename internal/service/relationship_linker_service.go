package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/apperror"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/repository"
)

// LinkGuardianInput links a person to a student within a school.
type LinkGuardianInput struct {
	PersonID   string
	StudentID  string
	SchoolID   string
	Attributes model.GuardianAttributes
}

// LinkStaffInput assigns a person to a class/subject within a school.
type LinkStaffInput struct {
	PersonID   string
	SchoolID   string
	Assignment model.ClassAssignment
}

// RelationshipLinkerService maintains person-student-school and person-school-class
// links. Writes fail closed: every error is returned, classified by apperror kind.
//
// A repeated link with the same key updates the existing row and reactivates it.
// A second active primary contact for a student is rejected; the existing one is kept.
type RelationshipLinkerService struct {
	rels  RelationshipStore
	cache StatisticsCache
	log   zerolog.Logger
}

// NewRelationshipLinkerService creates a new RelationshipLinkerService. cache may be nil.
func NewRelationshipLinkerService(rels RelationshipStore, cache StatisticsCache, log zerolog.Logger) *RelationshipLinkerService {
	if cache == nil {
		cache = noopStatisticsCache{}
	}
	return &RelationshipLinkerService{
		rels:  rels,
		cache: cache,
		log:   log.With().Str("component", "relationship_linker").Logger(),
	}
}

// LinkGuardian creates or updates the guardian link (PersonID, StudentID, SchoolID).
func (s *RelationshipLinkerService) LinkGuardian(ctx context.Context, in LinkGuardianInput) (*model.LinkResult, error) {
	if err := requireIDs(
		namedID{"person_id", in.PersonID},
		namedID{"student_id", in.StudentID},
		namedID{"school_id", in.SchoolID},
	); err != nil {
		return nil, err
	}
	if !model.IsGuardianType(in.Attributes.RelationshipType) {
		return nil, apperror.Validation(fmt.Sprintf("relationship_type %q is not a guardian role", in.Attributes.RelationshipType))
	}

	studentID := in.StudentID
	rel := &model.Relationship{
		PersonID:         in.PersonID,
		StudentID:        &studentID,
		SchoolID:         in.SchoolID,
		RelationshipType: in.Attributes.RelationshipType,
		IsPrimaryContact: in.Attributes.IsPrimaryContact,
		CanPickup:        in.Attributes.CanPickup,
		EmergencyContact: in.Attributes.EmergencyContact,
	}

	created, err := s.rels.UpsertGuardian(ctx, rel)
	if err != nil {
		return nil, classifyLinkError(err)
	}

	s.invalidate(ctx, rel.PersonID)
	s.log.Info().
		Str("relationship_id", rel.ID).
		Str("person_id", rel.PersonID).
		Str("student_id", studentID).
		Str("school_id", rel.SchoolID).
		Bool("created", created).
		Bool("primary", rel.IsPrimaryContact).
		Msg("guardian linked")

	return &model.LinkResult{Relationship: rel, Created: created}, nil
}

// LinkStaff creates or reactivates the staff assignment (PersonID, SchoolID, class, subject).
func (s *RelationshipLinkerService) LinkStaff(ctx context.Context, in LinkStaffInput) (*model.LinkResult, error) {
	if err := requireIDs(
		namedID{"person_id", in.PersonID},
		namedID{"school_id", in.SchoolID},
	); err != nil {
		return nil, err
	}
	if err := validateInput(in.Assignment); err != nil {
		return nil, err
	}

	className := strings.TrimSpace(in.Assignment.ClassName)
	subject := strings.TrimSpace(in.Assignment.Subject)
	if className == "" || subject == "" {
		return nil, apperror.Validation("class_name and subject are required")
	}

	relType := in.Assignment.RelationshipType
	if relType == "" {
		relType = model.RelationshipTeacher
	}
	if !model.IsStaffType(relType) {
		return nil, apperror.Validation(fmt.Sprintf("relationship_type %q is not a staff role", relType))
	}

	rel := &model.Relationship{
		PersonID:         in.PersonID,
		SchoolID:         in.SchoolID,
		RelationshipType: relType,
		ClassName:        &className,
		Subject:          &subject,
	}

	created, err := s.rels.UpsertStaff(ctx, rel)
	if err != nil {
		return nil, classifyLinkError(err)
	}

	s.invalidate(ctx, rel.PersonID)
	s.log.Info().
		Str("relationship_id", rel.ID).
		Str("person_id", rel.PersonID).
		Str("school_id", rel.SchoolID).
		Str("class_name", className).
		Str("subject", subject).
		Bool("created", created).
		Msg("staff assigned")

	return &model.LinkResult{Relationship: rel, Created: created}, nil
}

// Deactivate ends a relationship belonging to schoolID. The row is kept for audit.
// A relationship of another school is reported as not found.
func (s *RelationshipLinkerService) Deactivate(ctx context.Context, schoolID, relationshipID string) (*model.Relationship, error) {
	if err := requireIDs(
		namedID{"school_id", schoolID},
		namedID{"relationship_id", relationshipID},
	); err != nil {
		return nil, err
	}

	rel, err := s.rels.Deactivate(ctx, schoolID, relationshipID)
	if err != nil {
		return nil, classifyLinkError(err)
	}

	s.invalidate(ctx, rel.PersonID)
	s.log.Info().Str("relationship_id", rel.ID).Str("person_id", rel.PersonID).Msg("relationship deactivated")
	return rel, nil
}

func (s *RelationshipLinkerService) invalidate(ctx context.Context, personID string) {
	if err := s.cache.Invalidate(ctx, personID); err != nil {
		s.log.Warn().Err(err).Str("person_id", personID).Msg("failed to invalidate statistics cache")
	}
}

type namedID struct {
	name  string
	value string
}

// requireIDs checks, in order, that every id is a UUID.
func requireIDs(ids ...namedID) error {
	for _, id := range ids {
		if strings.TrimSpace(id.value) == "" {
			return apperror.Validation(id.name + " is required")
		}
		if _, err := uuid.Parse(id.value); err != nil {
			return apperror.Validation(id.name + " must be a valid UUID")
		}
	}
	return nil
}

func classifyLinkError(err error) error {
	switch {
	case errors.Is(err, repository.ErrPrimaryContactTaken):
		return apperror.Conflict("student already has an active primary contact", err)
	case errors.Is(err, repository.ErrPersonMissing):
		return apperror.NotFound("person not found", err)
	case errors.Is(err, repository.ErrSchoolMissing):
		return apperror.NotFound("school not found", err)
	case errors.Is(err, repository.ErrStudentNotInSchool):
		return apperror.NotFound("student not found in school", err)
	case errors.Is(err, repository.ErrRelationshipNotFound):
		return apperror.NotFound("relationship not found", err)
	case errors.Is(err, repository.ErrValueTooLong):
		return apperror.TooLong(err)
	default:
		return apperror.Backend(err)
	}
}
