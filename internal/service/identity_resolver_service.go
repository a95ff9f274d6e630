package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/apperror"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/query"
	"github.com/stemsi/edulink/internal/repository"
)

// IdentityResolverService decides whether a person with given contact details exists.
// A match is a suggestion for the operator, not a proof of identity.
type IdentityResolverService struct {
	persons PersonStore
	rels    RelationshipStore
	log     zerolog.Logger
}

// NewIdentityResolverService creates a new IdentityResolverService.
func NewIdentityResolverService(persons PersonStore, rels RelationshipStore, log zerolog.Logger) *IdentityResolverService {
	return &IdentityResolverService{
		persons: persons,
		rels:    rels,
		log:     log.With().Str("component", "identity_resolver").Logger(),
	}
}

// identityGroup matches email ignoring case OR phone exactly. Blank identifiers drop out.
func identityGroup(email, phone string) query.Group {
	return query.Any(
		query.ExactFold(query.FieldEmail, email),
		query.Exact(query.FieldPhone, phone),
	)
}

// CheckExisting returns the oldest person whose email or phone matches exactly, or nil.
// With neither identifier it returns nil without querying. Datastore errors are logged
// and reported as no match.
func (s *IdentityResolverService) CheckExisting(ctx context.Context, email, phone string) *model.PersonCandidate {
	c, err := s.Resolve(ctx, email, phone)
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			s.log.Error().Err(err).Msg("identity check failed, treating as no match")
		}
		return nil
	}
	return c
}

// Resolve is the fail-closed form of CheckExisting: it returns ErrValidation when no
// identifier is given and ErrBackendUnavailable when the datastore fails. A miss is
// (nil, nil).
func (s *IdentityResolverService) Resolve(ctx context.Context, email, phone string) (*model.PersonCandidate, error) {
	g := identityGroup(strings.TrimSpace(email), strings.TrimSpace(phone))
	if g.Empty() {
		return nil, apperror.Validation("email or phone is required")
	}

	p, err := s.persons.FindFirst(ctx, g)
	if err != nil {
		if errors.Is(err, repository.ErrPersonNotFound) {
			return nil, nil
		}
		return nil, apperror.Backend(err)
	}

	candidates := enrich(ctx, s.rels, s.log, []model.Person{*p})
	return &candidates[0], nil
}
