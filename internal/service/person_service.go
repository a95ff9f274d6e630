package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/apperror"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/repository"
)

// registerAttempts bounds the insert/re-read loop when the conflicting row disappears
// between the two statements (a concurrent transaction rolled back).
const registerAttempts = 3

// Page sizes of the identity flag queue.
const (
	DefaultFlagListLimit = 50
	MaxFlagListLimit     = 200
)

// PersonService creates and maintains person records and the identity review queue.
type PersonService struct {
	persons PersonStore
	flags   IdentityFlagStore
	log     zerolog.Logger
}

// NewPersonService creates a new PersonService.
func NewPersonService(persons PersonStore, flags IdentityFlagStore, log zerolog.Logger) *PersonService {
	return &PersonService{
		persons: persons,
		flags:   flags,
		log:     log.With().Str("component", "person_service").Logger(),
	}
}

// Register creates a person unless one with the same email (ignoring case) or phone
// exists, in which case the existing person is returned unchanged. When the existing
// person's name differs from the submitted one, an identity flag is queued for review.
func (s *PersonService) Register(ctx context.Context, req model.RegisterPersonRequest) (*model.RegisterResult, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}
	p := &model.Person{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      optional(req.Email),
		Phone:      optional(req.Phone),
		Profession: optional(req.Profession),
		Address:    optional(req.Address),
	}
	if p.FirstName == "" || p.LastName == "" {
		return nil, apperror.Validation("first_name and last_name are required")
	}
	if p.Email == nil && p.Phone == nil {
		return nil, apperror.Validation("email or phone is required")
	}

	g := identityGroup(deref(p.Email), deref(p.Phone))

	for attempt := 1; attempt <= registerAttempts; attempt++ {
		inserted, err := s.persons.InsertIfAbsent(ctx, p)
		if err != nil {
			if errors.Is(err, repository.ErrValueTooLong) {
				return nil, apperror.TooLong(err)
			}
			return nil, apperror.Backend(err)
		}
		if inserted {
			s.log.Info().Str("person_id", p.ID).Msg("person registered")
			return &model.RegisterResult{Person: p, Created: true}, nil
		}

		existing, err := s.persons.FindFirst(ctx, g)
		if errors.Is(err, repository.ErrPersonNotFound) {
			s.log.Warn().Int("attempt", attempt).Msg("conflicting person vanished, retrying insert")
			continue
		}
		if err != nil {
			return nil, apperror.Backend(err)
		}

		res := &model.RegisterResult{Person: existing}
		if !sameName(existing, p) {
			res.Flagged = s.flag(ctx, existing, p)
		}
		return res, nil
	}

	return nil, apperror.Conflict("person registration kept conflicting, try again", nil)
}

// flag records a name mismatch. A failed write is logged; the registration still
// succeeds with the existing person.
func (s *PersonService) flag(ctx context.Context, existing, submitted *model.Person) bool {
	f := &model.IdentityFlag{
		PersonID:           existing.ID,
		SubmittedFirstName: submitted.FirstName,
		SubmittedLastName:  submitted.LastName,
		SubmittedEmail:     submitted.Email,
		SubmittedPhone:     submitted.Phone,
		Reason:             model.FlagReasonNameMismatch,
	}
	if err := s.flags.Create(ctx, f); err != nil {
		s.log.Error().Err(err).Str("person_id", existing.ID).Msg("failed to record identity flag")
		return false
	}
	s.log.Info().Str("person_id", existing.ID).Str("flag_id", f.ID).Msg("identity flagged for review")
	return true
}

// Get returns a person by id.
func (s *PersonService) Get(ctx context.Context, id string) (*model.Person, error) {
	if err := requireIDs(namedID{"person_id", id}); err != nil {
		return nil, err
	}
	p, err := s.persons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPersonNotFound) {
			return nil, apperror.NotFound("person not found", err)
		}
		return nil, apperror.Backend(err)
	}
	return p, nil
}

// UpdateContact replaces a person's contact details. At least one of email or phone
// must remain.
func (s *PersonService) UpdateContact(ctx context.Context, id string, req model.UpdateContactRequest) (*model.Person, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Email = optional(req.Email)
	p.Phone = optional(req.Phone)
	p.Profession = optional(req.Profession)
	p.Address = optional(req.Address)
	if p.Email == nil && p.Phone == nil {
		return nil, apperror.Validation("email or phone is required")
	}

	if err := s.persons.UpdateContact(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperror.Conflict("email already belongs to another person", err)
		case errors.Is(err, repository.ErrDuplicatePhone):
			return nil, apperror.Conflict("phone already belongs to another person", err)
		case errors.Is(err, repository.ErrPersonNotFound):
			return nil, apperror.NotFound("person not found", err)
		case errors.Is(err, repository.ErrValueTooLong):
			return nil, apperror.TooLong(err)
		default:
			return nil, apperror.Backend(err)
		}
	}

	s.log.Info().Str("person_id", p.ID).Msg("contact updated")
	return p, nil
}

// ListOpenFlags returns unresolved identity flags, oldest first.
func (s *PersonService) ListOpenFlags(ctx context.Context, limit int) ([]model.IdentityFlag, error) {
	if limit <= 0 {
		limit = DefaultFlagListLimit
	}
	limit = min(limit, MaxFlagListLimit)
	flags, err := s.flags.ListOpen(ctx, limit)
	if err != nil {
		return nil, apperror.Backend(err)
	}
	if flags == nil {
		flags = []model.IdentityFlag{}
	}
	return flags, nil
}

// ResolveFlag closes an identity flag after operator review.
func (s *PersonService) ResolveFlag(ctx context.Context, id string) error {
	if err := requireIDs(namedID{"flag_id", id}); err != nil {
		return err
	}
	if err := s.flags.Resolve(ctx, id); err != nil {
		if errors.Is(err, repository.ErrFlagNotFound) {
			return apperror.NotFound("identity flag not found", err)
		}
		return apperror.Backend(err)
	}
	s.log.Info().Str("flag_id", id).Msg("identity flag resolved")
	return nil
}

func sameName(a, b *model.Person) bool {
	return strings.EqualFold(strings.TrimSpace(a.FirstName), b.FirstName) &&
		strings.EqualFold(strings.TrimSpace(a.LastName), b.LastName)
}

// optional trims s and returns nil when nothing is left.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
