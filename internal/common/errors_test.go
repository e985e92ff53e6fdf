package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorDefinitions(t *testing.T) {
	t.Parallel()

	errs := []error{
		ErrNotFound,
		ErrNotPermitted,
		ErrExists,
		ErrNotFolder,
		ErrInvalidPath,
		ErrStorageConflict,
	}

	t.Run("all errors are non-nil", func(t *testing.T) {
		t.Parallel()
		for i, err := range errs {
			require.NotNil(t, err, "error at index %d should not be nil", i)
		}
	})

	t.Run("all error messages are unique", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]bool)
		for _, err := range errs {
			msg := err.Error()
			assert.False(t, seen[msg], "duplicate error message: %s", msg)
			seen[msg] = true
		}
	})

	t.Run("wrapped errors match with errors.Is", func(t *testing.T) {
		t.Parallel()
		wrapped := fmt.Errorf("create /docs/sub: %w", ErrNotPermitted)
		assert.True(t, errors.Is(wrapped, ErrNotPermitted))
		assert.False(t, errors.Is(wrapped, ErrNotFound))
	})
}
