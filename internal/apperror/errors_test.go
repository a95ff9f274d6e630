package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("duplicate key")

func TestError_KindAndCause(t *testing.T) {
	err := Conflict("primary contact already set", errSentinel)

	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, errSentinel)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "primary contact already set: duplicate key", err.Error())
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("link guardian: %w", NotFound("student not found", nil))

	assert.Equal(t, ErrNotFound, KindOf(err))
	assert.Nil(t, KindOf(errors.New("plain")))
}

func TestBackend_Message(t *testing.T) {
	err := Backend(errors.New("dial tcp: refused"))

	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, "backend unavailable: dial tcp: refused", err.Error())
}

func TestTooLong_IsValidation(t *testing.T) {
	err := TooLong(errSentinel)

	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, errSentinel)
	assert.Equal(t, ErrValidation, KindOf(err))
}
