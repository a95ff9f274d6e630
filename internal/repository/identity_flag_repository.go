package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/edulink/internal/model"
)

var ErrFlagNotFound = errors.New("identity flag not found or already resolved")

// IdentityFlagRepository stores heuristic identity matches awaiting operator review.
type IdentityFlagRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityFlagRepository creates a new IdentityFlagRepository.
func NewIdentityFlagRepository(pool *pgxpool.Pool) *IdentityFlagRepository {
	return &IdentityFlagRepository{pool: pool}
}

// Create inserts a new open flag.
func (r *IdentityFlagRepository) Create(ctx context.Context, f *model.IdentityFlag) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO identity_flags (person_id, submitted_first_name, submitted_last_name,
		     submitted_email, submitted_phone, reason)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		f.PersonID, f.SubmittedFirstName, f.SubmittedLastName, f.SubmittedEmail, f.SubmittedPhone, f.Reason,
	).Scan(&f.ID, &f.CreatedAt)
}

// ListOpen returns unresolved flags, oldest first.
func (r *IdentityFlagRepository) ListOpen(ctx context.Context, limit int) ([]model.IdentityFlag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, person_id, submitted_first_name, submitted_last_name, submitted_email,
		        submitted_phone, reason, created_at, resolved_at
		 FROM identity_flags
		 WHERE resolved_at IS NULL
		 ORDER BY created_at ASC, id ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []model.IdentityFlag
	for rows.Next() {
		var f model.IdentityFlag
		if err := rows.Scan(&f.ID, &f.PersonID, &f.SubmittedFirstName, &f.SubmittedLastName, &f.SubmittedEmail,
			&f.SubmittedPhone, &f.Reason, &f.CreatedAt, &f.ResolvedAt); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// Resolve marks an open flag as reviewed.
func (r *IdentityFlagRepository) Resolve(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE identity_flags SET resolved_at = NOW() WHERE id = $1 AND resolved_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFlagNotFound
	}
	return nil
}
