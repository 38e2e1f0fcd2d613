package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "policy not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeForbidden))
	})

	t.Run("matches wrapped code", func(t *testing.T) {
		inner := New(CodeInvariantViolation, "already converted")
		outer := Wrap(inner, CodeInvalidTransition, "cannot issue policy")
		assert.True(t, HasCode(outer, CodeInvalidTransition))
		assert.True(t, HasCode(outer, CodeInvariantViolation))
	})

	t.Run("survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("service: %w", New(CodeConflict, "duplicate"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("outermost code wins", func(t *testing.T) {
		err := Wrap(New(CodeNotFound, "missing"), CodeInternal, "load failed")
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("uncoded errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}
