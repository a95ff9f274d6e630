package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/model"
)

// CrossTenantViewService aggregates a person's relationships across every school.
// All reads fail open: on datastore errors the result is empty, never an error.
type CrossTenantViewService struct {
	rels  RelationshipStore
	cache StatisticsCache
	log   zerolog.Logger
}

// NewCrossTenantViewService creates a new CrossTenantViewService. cache may be nil.
func NewCrossTenantViewService(rels RelationshipStore, cache StatisticsCache, log zerolog.Logger) *CrossTenantViewService {
	if cache == nil {
		cache = noopStatisticsCache{}
	}
	return &CrossTenantViewService{
		rels:  rels,
		cache: cache,
		log:   log.With().Str("component", "cross_tenant_view").Logger(),
	}
}

// Relationships returns every active relationship of the person, guardian and staff.
func (s *CrossTenantViewService) Relationships(ctx context.Context, personID string) []model.RelationshipDetail {
	return s.filter(ctx, personID, func(d *model.RelationshipDetail) bool {
		return d.Relationship.IsActive
	})
}

// ChildrenOf returns the person's active guardian links with student and school.
func (s *CrossTenantViewService) ChildrenOf(ctx context.Context, personID string) []model.RelationshipDetail {
	return s.filter(ctx, personID, func(d *model.RelationshipDetail) bool {
		return d.Relationship.IsActive && d.Relationship.IsGuardian()
	})
}

// AssignmentsOf returns the person's active staff assignments across schools.
func (s *CrossTenantViewService) AssignmentsOf(ctx context.Context, personID string) []model.RelationshipDetail {
	return s.filter(ctx, personID, func(d *model.RelationshipDetail) bool {
		return d.Relationship.IsActive && !d.Relationship.IsGuardian()
	})
}

func (s *CrossTenantViewService) filter(ctx context.Context, personID string, keep func(*model.RelationshipDetail) bool) []model.RelationshipDetail {
	out := []model.RelationshipDetail{}

	details, err := s.rels.ListByPerson(ctx, personID)
	if err != nil {
		s.log.Error().Err(err).Str("person_id", personID).Msg("failed to list relationships")
		return out
	}

	for i := range details {
		if keep(&details[i]) {
			out = append(out, details[i])
		}
	}
	return out
}

// StatisticsOf counts the person's children overall and per school. Inactive links
// count towards TotalChildren but not ActiveChildren; SchoolsCount is the number of
// schools with at least one active child.
func (s *CrossTenantViewService) StatisticsOf(ctx context.Context, personID string) model.Statistics {
	if cached, err := s.cache.Get(ctx, personID); err != nil {
		s.log.Warn().Err(err).Str("person_id", personID).Msg("statistics cache read failed")
	} else if cached != nil {
		return *cached
	}
	return s.RefreshStatistics(ctx, personID)
}

// RefreshStatistics recomputes the person's statistics from the datastore, bypassing
// the cached value, and caches the result unless the links changed meanwhile.
func (s *CrossTenantViewService) RefreshStatistics(ctx context.Context, personID string) model.Statistics {
	version, verr := s.cache.Version(ctx, personID)
	if verr != nil {
		s.log.Warn().Err(verr).Str("person_id", personID).Msg("statistics cache version read failed")
	}

	details, err := s.rels.ListByPerson(ctx, personID)
	if err != nil {
		s.log.Error().Err(err).Str("person_id", personID).Msg("failed to compute statistics")
		return model.EmptyStatistics()
	}

	stats := aggregate(details)
	if verr == nil {
		if err := s.cache.Set(ctx, personID, version, stats); err != nil {
			s.log.Warn().Err(err).Str("person_id", personID).Msg("statistics cache write failed")
		}
	}
	return stats
}

// aggregate groups guardian links by school. A student is counted once per school and
// once overall, however many links point at them.
func aggregate(details []model.RelationshipDetail) model.Statistics {
	type schoolAcc struct {
		ref    model.SchoolRef
		all    map[string]bool
		active map[string]bool
	}

	schools := map[string]*schoolAcc{}
	all := map[string]bool{}
	active := map[string]bool{}

	for _, d := range details {
		rel := d.Relationship
		if !rel.IsGuardian() {
			continue
		}
		sid := *rel.StudentID

		acc, ok := schools[rel.SchoolID]
		if !ok {
			acc = &schoolAcc{
				ref:    model.SchoolRef{ID: d.School.ID, Name: d.School.Name, City: d.School.City},
				all:    map[string]bool{},
				active: map[string]bool{},
			}
			schools[rel.SchoolID] = acc
		}

		acc.all[sid] = true
		all[sid] = true
		if rel.IsActive {
			acc.active[sid] = true
			active[sid] = true
		}
	}

	stats := model.EmptyStatistics()
	stats.TotalChildren = len(all)
	stats.ActiveChildren = len(active)

	for _, acc := range schools {
		stats.PerSchool = append(stats.PerSchool, model.SchoolBreakdown{
			School:         acc.ref,
			TotalChildren:  len(acc.all),
			ActiveChildren: len(acc.active),
		})
		if len(acc.active) > 0 {
			stats.SchoolsCount++
		}
	}

	sort.Slice(stats.PerSchool, func(i, j int) bool {
		a, b := stats.PerSchool[i].School, stats.PerSchool[j].School
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return stats
}
