package service

import (
	"context"
	"testing"

	"github.com/stemsi/edulink/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A parent enrolls a child in school A, then a second child in school B. The second
// school finds the existing person and links the new child to them.
func TestRegistry_ParentEnrollsChildrenInTwoSchools(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	schoolA := f.store.addSchool("Lycée Bilingue d'Essos", "Yaoundé")
	schoolB := f.store.addSchool("Collège de la Retraite", "Yaoundé")
	paul := f.store.addStudent(schoolA.ID, "Paul", "Kamga")
	aminata := f.store.addStudent(schoolB.ID, "Aminata", "Kamga")

	// School A: nobody exists yet, so the operator registers Jean.
	require.Nil(t, f.registry.CheckExistingPerson(ctx, "jean.kamga@gmail.com", ""))
	reg, err := f.persons.Register(ctx, model.RegisterPersonRequest{
		FirstName: "Jean",
		LastName:  "Kamga",
		Email:     "jean.kamga@gmail.com",
		Phone:     "+237678901234",
	})
	require.NoError(t, err)
	require.True(t, reg.Created)
	jean := reg.Person

	_, err = f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, schoolA.ID, parentOf(true))
	require.NoError(t, err)

	// School B: the resolver returns the existing Jean.
	existing := f.registry.CheckExistingPerson(ctx, "jean.kamga@gmail.com", "")
	require.NotNil(t, existing)
	assert.Equal(t, jean.ID, existing.Person.ID)
	assert.Equal(t, []string{"Paul Kamga"}, existing.Summary.StudentNames)

	_, err = f.registry.LinkPersonToStudentInSchool(ctx, existing.Person.ID, aminata.ID, schoolB.ID, parentOf(true))
	require.NoError(t, err)

	rels := f.registry.GetPersonRelationships(ctx, jean.ID)
	require.Len(t, rels, 2)

	got := map[string]string{}
	for _, d := range rels {
		require.NotNil(t, d.Student)
		got[d.Student.FullName()] = d.School.ID
	}
	assert.Equal(t, map[string]string{
		"Paul Kamga":    schoolA.ID,
		"Aminata Kamga": schoolB.ID,
	}, got)

	stats := f.registry.GetPersonStatistics(ctx, jean.ID)
	assert.Equal(t, 2, stats.SchoolsCount)
	assert.Equal(t, 2, stats.TotalChildren)
	assert.Equal(t, 1, f.store.personCount())
}
