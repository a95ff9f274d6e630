package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/edulink/internal/model"
)

var ErrSchoolNotFound = errors.New("school not found")

// SchoolRepository handles school (tenant) data access.
type SchoolRepository struct {
	pool *pgxpool.Pool
}

// NewSchoolRepository creates a new SchoolRepository.
func NewSchoolRepository(pool *pgxpool.Pool) *SchoolRepository {
	return &SchoolRepository{pool: pool}
}

// GetByID retrieves a school by ID.
func (r *SchoolRepository) GetByID(ctx context.Context, id string) (*model.School, error) {
	s := &model.School{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, city, created_at FROM schools WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.City, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return s, nil
}

// FindByName retrieves a school by exact name and city.
func (r *SchoolRepository) FindByName(ctx context.Context, name, city string) (*model.School, error) {
	s := &model.School{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, city, created_at FROM schools WHERE name = $1 AND city = $2
		 ORDER BY created_at LIMIT 1`, name, city,
	).Scan(&s.ID, &s.Name, &s.City, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return s, nil
}

// Create inserts a new school.
func (r *SchoolRepository) Create(ctx context.Context, s *model.School) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO schools (name, city) VALUES ($1, $2) RETURNING id, created_at`,
		s.Name, s.City,
	).Scan(&s.ID, &s.CreatedAt)
}
