package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/model"
)

// Registry is the library entry point of the cross-school person registry. It bundles
// search, identity resolution, linking and the cross-school view behind one value.
type Registry struct {
	Search   *CandidateSearchService
	Resolver *IdentityResolverService
	Linker   *RelationshipLinkerService
	View     *CrossTenantViewService
}

// NewRegistry wires the registry components over the given stores. cache may be nil.
func NewRegistry(persons PersonStore, rels RelationshipStore, cache StatisticsCache, log zerolog.Logger) *Registry {
	return &Registry{
		Search:   NewCandidateSearchService(persons, rels, log),
		Resolver: NewIdentityResolverService(persons, rels, log),
		Linker:   NewRelationshipLinkerService(rels, cache, log),
		View:     NewCrossTenantViewService(rels, cache, log),
	}
}

// SearchExistingPeople returns up to MaxSearchResults candidates matching term.
func (r *Registry) SearchExistingPeople(ctx context.Context, term string) []model.PersonCandidate {
	return r.Search.Search(ctx, term)
}

// CheckExistingPerson returns the person matching email or phone exactly, or nil.
func (r *Registry) CheckExistingPerson(ctx context.Context, email, phone string) *model.PersonCandidate {
	return r.Resolver.CheckExisting(ctx, email, phone)
}

// LinkPersonToStudentInSchool links a person as guardian of a student within a school.
func (r *Registry) LinkPersonToStudentInSchool(ctx context.Context, personID, studentID, schoolID string, attrs model.GuardianAttributes) (*model.LinkResult, error) {
	return r.Linker.LinkGuardian(ctx, LinkGuardianInput{
		PersonID:   personID,
		StudentID:  studentID,
		SchoolID:   schoolID,
		Attributes: attrs,
	})
}

// LinkPersonToSchoolAssignment assigns a person to a class and subject within a school.
func (r *Registry) LinkPersonToSchoolAssignment(ctx context.Context, personID, schoolID string, assignment model.ClassAssignment) (*model.LinkResult, error) {
	return r.Linker.LinkStaff(ctx, LinkStaffInput{
		PersonID:   personID,
		SchoolID:   schoolID,
		Assignment: assignment,
	})
}

// GetPersonRelationships returns the person's active relationships in every school.
func (r *Registry) GetPersonRelationships(ctx context.Context, personID string) []model.RelationshipDetail {
	return r.View.Relationships(ctx, personID)
}

// GetPersonStatistics aggregates the person's children across schools.
func (r *Registry) GetPersonStatistics(ctx context.Context, personID string) model.Statistics {
	return r.View.StatisticsOf(ctx, personID)
}
