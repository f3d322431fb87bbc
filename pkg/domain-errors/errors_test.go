package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("HasCode sees the outermost coded error", func(t *testing.T) {
		inner := New(CodeNotFound, "attestation not found")
		outer := Wrap(inner, CodeInternal, "load failed")

		assert.True(t, HasCode(outer, CodeInternal))
		assert.False(t, HasCode(outer, CodeNotFound))
		assert.True(t, HasCode(inner, CodeNotFound))
	})

	t.Run("coded errors survive fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("context: %w", New(CodeConflict, "duplicate request id"))
		assert.True(t, Is(err, CodeConflict))
		assert.Equal(t, CodeConflict, CodeOf(err))
		assert.Equal(t, "duplicate request id", MessageOf(err))
	})

	t.Run("uncoded errors map to internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.Empty(t, MessageOf(err))
	})

	t.Run("Wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("redis down")
		err := Wrap(cause, CodeUnavailable, "store unavailable")
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "store unavailable")
	})
}

type kindError struct{ kind string }

func (e *kindError) Error() string { return "evidence: " + e.kind }
func (e *kindError) Code() Code    { return CodeInvalidInput }

func TestCoder(t *testing.T) {
	err := fmt.Errorf("parse: %w", &kindError{kind: "MissingDomain"})
	assert.True(t, HasCode(err, CodeInvalidInput))
	assert.Equal(t, CodeInvalidInput, CodeOf(err))
	assert.Equal(t, "evidence: MissingDomain", MessageOf(err))

	wrapped := Wrap(err, CodeInternal, "boom")
	assert.Equal(t, CodeInternal, CodeOf(wrapped))
}
