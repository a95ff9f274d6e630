package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/edulink/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentService_Roster(t *testing.T) {
	store := newMemStore()
	svc := NewStudentService(memSchools{store}, memSchools{store})
	ctx := context.Background()

	schoolA := store.addSchool("Lycée Bilingue", "Yaoundé")
	schoolB := store.addSchool("Collège Vogt", "Yaoundé")
	paul := store.addStudent(schoolA.ID, "Paul", "Kamga")
	store.addStudent(schoolA.ID, "Alice", "Eto'o")
	store.addStudent(schoolB.ID, "Aminata", "Kamga")

	students, err := svc.ListStudents(ctx, schoolA.ID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Alice", students[0].FirstName)

	got, err := svc.GetStudent(ctx, schoolA.ID, paul.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paul Kamga", got.FullName())

	_, err = svc.GetStudent(ctx, schoolB.ID, paul.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.ListStudents(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	store.setDown(true)
	_, err = svc.ListStudents(ctx, schoolA.ID)
	assert.ErrorIs(t, err, apperror.ErrBackendUnavailable)
}
