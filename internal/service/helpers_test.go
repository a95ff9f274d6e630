package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memStore
	cache    *memCache
	registry *Registry
	persons  *PersonService
}

func newFixture() *fixture {
	store := newMemStore()
	cache := newMemCache()
	log := zerolog.Nop()
	return &fixture{
		store:    store,
		cache:    cache,
		registry: NewRegistry(store, store, cache, log),
		persons:  NewPersonService(store, store, log),
	}
}

func (f *fixture) register(t *testing.T, first, last, email, phone string) *model.Person {
	t.Helper()
	res, err := f.persons.Register(context.Background(), model.RegisterPersonRequest{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Phone:     phone,
	})
	require.NoError(t, err)
	return res.Person
}

func parentOf(primary bool) model.GuardianAttributes {
	return model.GuardianAttributes{RelationshipType: model.RelationshipParent, IsPrimaryContact: primary, CanPickup: true}
}

func personIDs(cs []model.PersonCandidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.Person.ID
	}
	return ids
}
