package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeNotFound, NotFound("Column"))
		err := Wrap(inner, CodeInternal, CommitFailed)

		assert.True(t, HasCode(err, CodeInternal))
		assert.False(t, HasCode(err, CodeNotFound))
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.ErrorIs(t, err, inner)
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeConflict, "stale"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("uncoded errors are internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.False(t, HasCode(err, CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})
}

func TestValidation(t *testing.T) {
	t.Run("no details means no error", func(t *testing.T) {
		assert.NoError(t, NewValidation(nil))
	})

	t.Run("details are kept in order", func(t *testing.T) {
		err := NewValidation([]string{RequiredField("BoardId"), MustBeGreaterThan("NewCardPriorityInColumn", 0)})
		require.Error(t, err)
		assert.True(t, HasCode(err, CodeValidation))
		assert.Equal(t, []string{
			"Please, ensure you enter BoardId.",
			"NewCardPriorityInColumn must be greater than 0.",
		}, DetailsOf(err))
	})

	t.Run("single errors expose their message", func(t *testing.T) {
		err := New(CodeAlreadyPresent, AlreadyPresent("Card", "Column"))
		assert.Equal(t, []string{"That Card already is in the Column."}, DetailsOf(err))
	})
}
