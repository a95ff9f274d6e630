package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/edulink/internal/model"
)

var ErrStudentNotFound = errors.New("student not found")

// StudentRepository handles student data access. Every query is scoped by school.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetInSchool retrieves a student enrolled in the given school.
func (r *StudentRepository) GetInSchool(ctx context.Context, schoolID, id string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, school_id, class_name, created_at
		 FROM students WHERE id = $1 AND school_id = $2`, id, schoolID,
	).Scan(&s.ID, &s.FirstName, &s.LastName, &s.SchoolID, &s.ClassName, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListBySchool retrieves the students of a school ordered by name.
func (r *StudentRepository) ListBySchool(ctx context.Context, schoolID string) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, school_id, class_name, created_at
		 FROM students WHERE school_id = $1 ORDER BY last_name, first_name`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.SchoolID, &s.ClassName, &s.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (first_name, last_name, school_id, class_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.FirstName, s.LastName, s.SchoolID, s.ClassName,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err, "students_school_id_fkey") {
			return ErrSchoolNotFound
		}
		return err
	}
	return nil
}
