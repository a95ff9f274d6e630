package service

import (
	"context"

	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/query"
)

// PersonStore is the person side of the datastore contract. Implemented by
// repository.PersonRepository.
type PersonStore interface {
	GetByID(ctx context.Context, id string) (*model.Person, error)
	Search(ctx context.Context, g query.Group, limit int) ([]model.Person, error)
	FindFirst(ctx context.Context, g query.Group) (*model.Person, error)
	InsertIfAbsent(ctx context.Context, p *model.Person) (bool, error)
	UpdateContact(ctx context.Context, p *model.Person) error
}

// RelationshipStore is the relationship side of the datastore contract. Implemented by
// repository.RelationshipRepository.
type RelationshipStore interface {
	UpsertGuardian(ctx context.Context, rel *model.Relationship) (bool, error)
	UpsertStaff(ctx context.Context, rel *model.Relationship) (bool, error)
	Deactivate(ctx context.Context, schoolID, id string) (*model.Relationship, error)
	ActiveSummaries(ctx context.Context, personIDs []string) ([]model.SummaryRow, error)
	ListByPerson(ctx context.Context, personID string) ([]model.RelationshipDetail, error)
}

// IdentityFlagStore persists flagged heuristic matches.
type IdentityFlagStore interface {
	Create(ctx context.Context, f *model.IdentityFlag) error
	ListOpen(ctx context.Context, limit int) ([]model.IdentityFlag, error)
	Resolve(ctx context.Context, id string) error
}

// StatisticsCache caches StatisticsOf results. A nil result with a nil error is a miss.
// Every Invalidate bumps the person's version; Set only stores statistics computed
// at the current version, so a read that raced a link cannot write old numbers back.
type StatisticsCache interface {
	Get(ctx context.Context, personID string) (*model.Statistics, error)
	Version(ctx context.Context, personID string) (int64, error)
	Set(ctx context.Context, personID string, version int64, stats model.Statistics) error
	Invalidate(ctx context.Context, personID string) error
}

type noopStatisticsCache struct{}

func (noopStatisticsCache) Get(context.Context, string) (*model.Statistics, error) { return nil, nil }
func (noopStatisticsCache) Version(context.Context, string) (int64, error)         { return 0, nil }
func (noopStatisticsCache) Set(context.Context, string, int64, model.Statistics) error {
	return nil
}
func (noopStatisticsCache) Invalidate(context.Context, string) error { return nil }

// SchoolStore reads tenants. Implemented by repository.SchoolRepository.
type SchoolStore interface {
	GetByID(ctx context.Context, id string) (*model.School, error)
}

// StudentStore reads students, always within one school. Implemented by
// repository.StudentRepository.
type StudentStore interface {
	GetInSchool(ctx context.Context, schoolID, id string) (*model.Student, error)
	ListBySchool(ctx context.Context, schoolID string) ([]model.Student, error)
}
