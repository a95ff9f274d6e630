package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/edulink/internal/apperror"
	"github.com/stemsi/edulink/internal/model"
	"github.com/stemsi/edulink/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkGuardian_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	school := f.store.addSchool("Lycée Bilingue", "Yaoundé")
	paul := f.store.addStudent(school.ID, "Paul", "Kamga")
	jean := f.register(t, "Jean", "Kamga", "jean.kamga@gmail.com", "")

	first, err := f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, school.ID, parentOf(true))
	require.NoError(t, err)
	assert.True(t, first.Created)

	attrs := parentOf(true)
	attrs.EmergencyContact = true
	second, err := f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, school.ID, attrs)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Relationship.ID, second.Relationship.ID)
	assert.True(t, second.Relationship.EmergencyContact)

	assert.Len(t, f.store.rels, 1)
}

func TestLinkGuardian_RelinkReactivates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	school := f.store.addSchool("Lycée Bilingue", "Yaoundé")
	paul := f.store.addStudent(school.ID, "Paul", "Kamga")
	jean := f.register(t, "Jean", "Kamga", "jean.kamga@gmail.com", "")

	res, err := f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, school.ID, parentOf(false))
	require.NoError(t, err)
	_, err = f.registry.Linker.Deactivate(ctx, school.ID, res.Relationship.ID)
	require.NoError(t, err)

	again, err := f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, school.ID, parentOf(false))
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.True(t, again.Relationship.IsActive)
}

func TestLinkGuardian_SecondPrimaryContactRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	school := f.store.addSchool("Lycée Bilingue", "Yaoundé")
	paul := f.store.addStudent(school.ID, "Paul", "Kamga")
	jean := f.register(t, "Jean", "Kamga", "jean.kamga@gmail.com", "")
	marie := f.register(t, "Marie", "Kamga", "marie.kamga@gmail.com", "")

	a, err := f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, school.ID, parentOf(true))
	require.NoError(t, err)

	_, err = f.registry.LinkPersonToStudentInSchool(ctx, marie.ID, paul.ID, school.ID, parentOf(true))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.ErrorIs(t, err, repository.ErrPrimaryContactTaken)

	// The existing primary is untouched and Marie can still be linked as non-primary.
	children := f.registry.View.ChildrenOf(ctx, jean.ID)
	require.Len(t, children, 1)
	assert.Equal(t, a.Relationship.ID, children[0].Relationship.ID)
	assert.True(t, children[0].Relationship.IsPrimaryContact)

	_, err = f.registry.LinkPersonToStudentInSchool(ctx, marie.ID, paul.ID, school.ID, parentOf(false))
	assert.NoError(t, err)

	// Relinking the current primary as primary is an update, not a conflict.
	_, err = f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, school.ID, parentOf(true))
	assert.NoError(t, err)
}

func TestLinkGuardian_PrimaryFreedByDeactivation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	school := f.store.addSchool("Lycée Bilingue", "Yaoundé")
	paul := f.store.addStudent(school.ID, "Paul", "Kamga")
	jean := f.register(t, "Jean", "Kamga", "jean.kamga@gmail.com", "")
	marie := f.register(t, "Marie", "Kamga", "marie.kamga@gmail.com", "")

	a, err := f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, school.ID, parentOf(true))
	require.NoError(t, err)
	_, err = f.registry.Linker.Deactivate(ctx, school.ID, a.Relationship.ID)
	require.NoError(t, err)

	_, err = f.registry.LinkPersonToStudentInSchool(ctx, marie.ID, paul.ID, school.ID, parentOf(true))
	assert.NoError(t, err)
}

func TestLinkGuardian_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.NewString()

	tests := []struct {
		name      string
		personID  string
		studentID string
		schoolID  string
		attrs     model.GuardianAttributes
	}{
		{"missing person", "", id, id, parentOf(false)},
		{"malformed student", id, "not-a-uuid", id, parentOf(false)},
		{"missing school", id, id, "", parentOf(false)},
		{"staff role on guardian link", id, id, id, model.GuardianAttributes{RelationshipType: model.RelationshipTeacher}},
		{"empty role", id, id, id, model.GuardianAttributes{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.registry.LinkPersonToStudentInSchool(ctx, tt.personID, tt.studentID, tt.schoolID, tt.attrs)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestLinkGuardian_UnresolvedReferences(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	schoolA := f.store.addSchool("Lycée Bilingue", "Yaoundé")
	schoolB := f.store.addSchool("Collège Vogt", "Yaoundé")
	paul := f.store.addStudent(schoolA.ID, "Paul", "Kamga")
	jean := f.register(t, "Jean", "Kamga", "jean.kamga@gmail.com", "")

	_, err := f.registry.LinkPersonToStudentInSchool(ctx, uuid.NewString(), paul.ID, schoolA.ID, parentOf(false))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, err, repository.ErrPersonMissing)

	_, err = f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, uuid.NewString(), parentOf(false))
	assert.ErrorIs(t, err, repository.ErrSchoolMissing)

	// Paul is enrolled in school A, not B.
	_, err = f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, schoolB.ID, parentOf(false))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, err, repository.ErrStudentNotInSchool)

	assert.Empty(t, f.store.rels)
}

func TestLinkGuardian_BackendFailureIsReturned(t *testing.T) {
	f := newFixture()
	id := uuid.NewString()
	f.store.setDown(true)

	_, err := f.registry.LinkPersonToStudentInSchool(context.Background(), id, id, id, parentOf(false))
	assert.ErrorIs(t, err, apperror.ErrBackendUnavailable)
}

func TestLinkStaff_DefaultsToTeacherAndIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	school := f.store.addSchool("Lycée Bilingue", "Yaoundé")
	alain := f.register(t, "Alain", "Fotso", "alain@example.com", "")

	first, err := f.registry.LinkPersonToSchoolAssignment(ctx, alain.ID, school.ID,
		model.ClassAssignment{ClassName: " 6e A ", Subject: "Mathématiques"})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, model.RelationshipTeacher, first.Relationship.RelationshipType)
	assert.Equal(t, "6e A", *first.Relationship.ClassName)
	assert.False(t, first.Relationship.IsPrimaryContact)

	second, err := f.registry.LinkPersonToSchoolAssignment(ctx, alain.ID, school.ID,
		model.ClassAssignment{ClassName: "6e A", Subject: "Mathématiques"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Relationship.ID, second.Relationship.ID)

	_, err = f.registry.LinkPersonToSchoolAssignment(ctx, alain.ID, school.ID,
		model.ClassAssignment{ClassName: "5e B", Subject: "Mathématiques"})
	require.NoError(t, err)
	assert.Len(t, f.registry.View.AssignmentsOf(ctx, alain.ID), 2)
}

func TestLinkStaff_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.NewString()

	_, err := f.registry.LinkPersonToSchoolAssignment(ctx, id, id, model.ClassAssignment{ClassName: "6e A", Subject: " "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.registry.LinkPersonToSchoolAssignment(ctx, id, id,
		model.ClassAssignment{RelationshipType: model.RelationshipParent, ClassName: "6e A", Subject: "Histoire"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.registry.LinkPersonToSchoolAssignment(ctx, id, id,
		model.ClassAssignment{ClassName: strings.Repeat("6", 51), Subject: "Histoire"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, err.Error(), "class_name")
}

func TestLink_InvalidatesStatistics(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	school := f.store.addSchool("Lycée Bilingue", "Yaoundé")
	paul := f.store.addStudent(school.ID, "Paul", "Kamga")
	jean := f.register(t, "Jean", "Kamga", "jean.kamga@gmail.com", "")

	assert.Equal(t, 0, f.registry.GetPersonStatistics(ctx, jean.ID).TotalChildren)

	_, err := f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, school.ID, parentOf(false))
	require.NoError(t, err)

	assert.Equal(t, 1, f.registry.GetPersonStatistics(ctx, jean.ID).TotalChildren)
}

func TestLink_CacheFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	school := f.store.addSchool("Lycée Bilingue", "Yaoundé")
	paul := f.store.addStudent(school.ID, "Paul", "Kamga")
	jean := f.register(t, "Jean", "Kamga", "jean.kamga@gmail.com", "")
	f.cache.broken = true

	_, err := f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, school.ID, parentOf(false))
	assert.NoError(t, err)
}

func TestDeactivate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	schoolA := f.store.addSchool("Lycée Bilingue", "Yaoundé")
	schoolB := f.store.addSchool("Collège Vogt", "Yaoundé")
	paul := f.store.addStudent(schoolA.ID, "Paul", "Kamga")
	jean := f.register(t, "Jean", "Kamga", "jean.kamga@gmail.com", "")

	res, err := f.registry.LinkPersonToStudentInSchool(ctx, jean.ID, paul.ID, schoolA.ID, parentOf(false))
	require.NoError(t, err)

	// Another school cannot end school A's relationship.
	_, err = f.registry.Linker.Deactivate(ctx, schoolB.ID, res.Relationship.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	rel, err := f.registry.Linker.Deactivate(ctx, schoolA.ID, res.Relationship.ID)
	require.NoError(t, err)
	assert.False(t, rel.IsActive)
	assert.Empty(t, f.registry.View.ChildrenOf(ctx, jean.ID))
	assert.Len(t, f.store.rels, 1)

	_, err = f.registry.Linker.Deactivate(ctx, schoolA.ID, uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.registry.Linker.Deactivate(ctx, schoolA.ID, "42")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
