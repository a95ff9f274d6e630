package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/edulink/internal/model"
)

var (
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrPrimaryContactTaken  = errors.New("student already has an active primary contact")
	ErrPersonMissing        = errors.New("referenced person does not exist")
	ErrSchoolMissing        = errors.New("referenced school does not exist")
	ErrStudentNotInSchool   = errors.New("referenced student is not enrolled in the school")
)

const (
	constraintOnePrimary         = "relationships_one_primary_per_student"
	constraintRelPersonFK        = "relationships_person_fkey"
	constraintRelSchoolFK        = "relationships_school_fkey"
	constraintRelStudentSchoolFK = "relationships_student_school_fkey"
)

const relationshipColumns = `r.id, r.person_id, r.student_id, r.school_id, r.relationship_type, r.is_primary_contact,
	r.can_pickup, r.emergency_contact, r.class_name, r.subject, r.is_active, r.created_at, r.updated_at`

// RelationshipRepository handles person-student-school links.
type RelationshipRepository struct {
	pool *pgxpool.Pool
}

// NewRelationshipRepository creates a new RelationshipRepository.
func NewRelationshipRepository(pool *pgxpool.Pool) *RelationshipRepository {
	return &RelationshipRepository{pool: pool}
}

func scanRelationship(row scanner, rel *model.Relationship, extra ...any) error {
	dest := []any{
		&rel.ID, &rel.PersonID, &rel.StudentID, &rel.SchoolID, &rel.RelationshipType, &rel.IsPrimaryContact,
		&rel.CanPickup, &rel.EmergencyContact, &rel.ClassName, &rel.Subject, &rel.IsActive, &rel.CreatedAt, &rel.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// UpsertGuardian inserts a guardian link or, when (person, student, school) already
// exists, updates its attributes and reactivates it. The whole operation is one
// statement; the single-primary-contact rule is enforced by a partial unique index.
// It reports whether a new row was inserted.
func (r *RelationshipRepository) UpsertGuardian(ctx context.Context, rel *model.Relationship) (bool, error) {
	var inserted bool
	err := scanRelationship(r.pool.QueryRow(ctx,
		`INSERT INTO relationships AS r (person_id, student_id, school_id, relationship_type,
		     is_primary_contact, can_pickup, emergency_contact)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (person_id, student_id, school_id) WHERE student_id IS NOT NULL
		 DO UPDATE SET relationship_type = EXCLUDED.relationship_type,
		     is_primary_contact = EXCLUDED.is_primary_contact,
		     can_pickup = EXCLUDED.can_pickup,
		     emergency_contact = EXCLUDED.emergency_contact,
		     is_active = TRUE,
		     updated_at = NOW()
		 RETURNING `+relationshipColumns+`, (r.xmax = 0)`,
		rel.PersonID, rel.StudentID, rel.SchoolID, rel.RelationshipType,
		rel.IsPrimaryContact, rel.CanPickup, rel.EmergencyContact,
	), rel, &inserted)
	if err != nil {
		return false, mapRelationshipWriteError(err)
	}
	return inserted, nil
}

// UpsertStaff inserts a staff assignment or reactivates the existing one with the same
// (person, school, class, subject) key.
func (r *RelationshipRepository) UpsertStaff(ctx context.Context, rel *model.Relationship) (bool, error) {
	var inserted bool
	err := scanRelationship(r.pool.QueryRow(ctx,
		`INSERT INTO relationships AS r (person_id, school_id, relationship_type, class_name, subject)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (person_id, school_id, class_name, subject) WHERE student_id IS NULL
		 DO UPDATE SET relationship_type = EXCLUDED.relationship_type,
		     is_active = TRUE,
		     updated_at = NOW()
		 RETURNING `+relationshipColumns+`, (r.xmax = 0)`,
		rel.PersonID, rel.SchoolID, rel.RelationshipType, rel.ClassName, rel.Subject,
	), rel, &inserted)
	if err != nil {
		return false, mapRelationshipWriteError(err)
	}
	return inserted, nil
}

// Deactivate ends a relationship while keeping the row for audit.
func (r *RelationshipRepository) Deactivate(ctx context.Context, schoolID, id string) (*model.Relationship, error) {
	rel := &model.Relationship{}
	err := scanRelationship(r.pool.QueryRow(ctx,
		`UPDATE relationships AS r SET is_active = FALSE, updated_at = NOW()
		 WHERE r.id = $1 AND r.school_id = $2
		 RETURNING `+relationshipColumns, id, schoolID), rel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRelationshipNotFound
		}
		return nil, err
	}
	return rel, nil
}

// ActiveSummaries loads the active relationships of the given persons with student
// names and schools, in one round trip.
func (r *RelationshipRepository) ActiveSummaries(ctx context.Context, personIDs []string) ([]model.SummaryRow, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT r.person_id, COALESCE(st.id::text, ''), COALESCE(st.first_name, ''), COALESCE(st.last_name, ''),
		        sc.id, sc.name, sc.city
		 FROM relationships r
		 JOIN schools sc ON sc.id = r.school_id
		 LEFT JOIN students st ON st.id = r.student_id
		 WHERE r.person_id = ANY($1) AND r.is_active
		 ORDER BY r.person_id, sc.name, sc.id, st.last_name, st.first_name`,
		personIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SummaryRow
	for rows.Next() {
		var s model.SummaryRow
		if err := rows.Scan(&s.PersonID, &s.StudentID, &s.StudentFirstName, &s.StudentLastName,
			&s.School.ID, &s.School.Name, &s.School.City); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByPerson returns every relationship of a person, active or not, with its student
// (guardian links only) and school, ordered by school name.
func (r *RelationshipRepository) ListByPerson(ctx context.Context, personID string) ([]model.RelationshipDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+relationshipColumns+`,
		        st.id, st.first_name, st.last_name, st.class_name, st.created_at,
		        sc.id, sc.name, sc.city, sc.created_at
		 FROM relationships r
		 JOIN schools sc ON sc.id = r.school_id
		 LEFT JOIN students st ON st.id = r.student_id
		 WHERE r.person_id = $1
		 ORDER BY sc.name, sc.id, r.created_at`,
		personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RelationshipDetail
	for rows.Next() {
		var (
			d                              model.RelationshipDetail
			stID, stFirst, stLast, stClass *string
			stCreated                      *time.Time
		)
		if err := scanRelationship(rows, &d.Relationship,
			&stID, &stFirst, &stLast, &stClass, &stCreated,
			&d.School.ID, &d.School.Name, &d.School.City, &d.School.CreatedAt,
		); err != nil {
			return nil, err
		}
		if stID != nil {
			d.Student = &model.Student{
				ID:        *stID,
				FirstName: deref(stFirst),
				LastName:  deref(stLast),
				SchoolID:  d.Relationship.SchoolID,
				ClassName: deref(stClass),
			}
			if stCreated != nil {
				d.Student.CreatedAt = *stCreated
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func mapRelationshipWriteError(err error) error {
	switch {
	case isUniqueViolation(err, constraintOnePrimary):
		return ErrPrimaryContactTaken
	case isForeignKeyViolation(err, constraintRelPersonFK):
		return ErrPersonMissing
	case isForeignKeyViolation(err, constraintRelSchoolFK):
		return ErrSchoolMissing
	case isForeignKeyViolation(err, constraintRelStudentSchoolFK):
		return ErrStudentNotInSchool
	case isValueTooLong(err):
		return fmt.Errorf("%w: %w", ErrValueTooLong, err)
	default:
		return err
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
