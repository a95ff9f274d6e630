package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/query"
)

var (
	ErrPersonNotFound = errors.New("person not found")
	ErrDuplicateEmail = errors.New("person with this email already exists")
	ErrDuplicatePhone = errors.New("person with this phone already exists")
)

const (
	constraintPersonEmail = "persons_email_lower_key"
	constraintPersonPhone = "persons_phone_key"
)

const personColumns = `id, first_name, last_name, email, phone, profession, address, created_at, updated_at`

// PersonRepository handles person data access.
type PersonRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository creates a new PersonRepository.
func NewPersonRepository(pool *pgxpool.Pool) *PersonRepository {
	return &PersonRepository{pool: pool}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner, p *model.Person) error {
	return row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Profession, &p.Address, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID retrieves a person by ID.
func (r *PersonRepository) GetByID(ctx context.Context, id string) (*model.Person, error) {
	p := &model.Person{}
	err := scanPerson(r.pool.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, id), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return p, nil
}

// Search returns up to limit persons matching any predicate of the group.
func (r *PersonRepository) Search(ctx context.Context, g query.Group, limit int) ([]model.Person, error) {
	where, args, err := g.Compile(1)
	if err != nil {
		return nil, err
	}

	sql := `SELECT ` + personColumns + ` FROM persons WHERE ` + where +
		` ORDER BY last_name, first_name, id LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []model.Person
	for rows.Next() {
		var p model.Person
		if err := scanPerson(rows, &p); err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// FindFirst returns the oldest person matching any predicate of the group.
// Ties on created_at are broken by id so the answer is stable.
func (r *PersonRepository) FindFirst(ctx context.Context, g query.Group) (*model.Person, error) {
	if g.Empty() {
		return nil, ErrPersonNotFound
	}
	where, args, err := g.Compile(1)
	if err != nil {
		return nil, err
	}

	p := &model.Person{}
	err = scanPerson(r.pool.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE `+where+` ORDER BY created_at ASC, id ASC LIMIT 1`,
		args...), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return p, nil
}

// InsertIfAbsent inserts p unless a person with the same email (ignoring case) or phone
// already exists. It reports whether a row was inserted; on insert p receives its id
// and timestamps. Concurrent callers racing on the same identity get exactly one insert.
func (r *PersonRepository) InsertIfAbsent(ctx context.Context, p *model.Person) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO persons (first_name, last_name, email, phone, profession, address)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT DO NOTHING
		 RETURNING id, created_at, updated_at`,
		p.FirstName, p.LastName, p.Email, p.Phone, p.Profession, p.Address,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert person: %w", mapPersonWriteError(err))
	}
	return true, nil
}

// UpdateContact overwrites a person's contact details.
func (r *PersonRepository) UpdateContact(ctx context.Context, p *model.Person) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE persons SET email = $1, phone = $2, profession = $3, address = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		p.Email, p.Phone, p.Profession, p.Address, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPersonNotFound
		}
		return mapPersonWriteError(err)
	}
	return nil
}

func mapPersonWriteError(err error) error {
	switch {
	case isUniqueViolation(err, constraintPersonEmail):
		return ErrDuplicateEmail
	case isUniqueViolation(err, constraintPersonPhone):
		return ErrDuplicatePhone
	case isValueTooLong(err):
		return fmt.Errorf("%w: %w", ErrValueTooLong, err)
	default:
		return err
	}
}
