package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/query"
)

// MaxSearchResults caps the number of candidates a search returns.
const MaxSearchResults = 10

// MinSearchTermLength is the shortest term interactive callers should send.
// Shorter terms are expected to be short-circuited by the caller.
const MinSearchTermLength = 2

// CandidateSearchService finds people who may already exist while an operator types.
type CandidateSearchService struct {
	persons PersonStore
	rels    RelationshipStore
	log     zerolog.Logger
}

// NewCandidateSearchService creates a new CandidateSearchService.
func NewCandidateSearchService(persons PersonStore, rels RelationshipStore, log zerolog.Logger) *CandidateSearchService {
	return &CandidateSearchService{
		persons: persons,
		rels:    rels,
		log:     log.With().Str("component", "candidate_search").Logger(),
	}
}

// Search returns up to MaxSearchResults people whose first name, last name, email or
// phone contains term, ignoring case. It never fails: datastore errors are logged and an
// empty list is returned.
func (s *CandidateSearchService) Search(ctx context.Context, term string) []model.PersonCandidate {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.PersonCandidate{}
	}

	g := query.Any(
		query.Substring(query.FieldFirstName, term),
		query.Substring(query.FieldLastName, term),
		query.Substring(query.FieldEmail, term),
		query.Substring(query.FieldPhone, term),
	)

	persons, err := s.persons.Search(ctx, g, MaxSearchResults)
	if err != nil {
		s.log.Error().Err(err).Int("term_len", len(term)).Msg("candidate search failed")
		return []model.PersonCandidate{}
	}

	return enrich(ctx, s.rels, s.log, persons)
}
