package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forjaerrors "github.com/mrz1836/forja/internal/errors"
)

type testError struct {
	msg string
}

func (e testError) Error() string {
	return e.msg
}

func TestSentinelErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrExtraction", forjaerrors.ErrExtraction, "json extraction failed"},
		{"ErrGateway", forjaerrors.ErrGateway, "completion gateway error"},
		{"ErrQuota", forjaerrors.ErrQuota, "capability quota exhausted"},
		{"ErrReconciliationConflict", forjaerrors.ErrReconciliationConflict, "reconciliation conflict"},
		{"ErrFileNotFound", forjaerrors.ErrFileNotFound, "file not found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, forjaerrors.Wrap(nil, "context"))
		require.NoError(t, forjaerrors.Wrapf(nil, "context %d", 1))
	})

	t.Run("preserves chain", func(t *testing.T) {
		err := forjaerrors.Wrapf(forjaerrors.ErrQuota, "capability %s", "primary")
		require.ErrorIs(t, err, forjaerrors.ErrQuota)
		assert.Equal(t, "capability primary: capability quota exhausted", err.Error())
	})
}

func TestUserMessage(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, forjaerrors.UserMessage(nil))
	})

	t.Run("direct sentinel", func(t *testing.T) {
		assert.Contains(t, forjaerrors.UserMessage(forjaerrors.ErrFileNotFound), "No se encontró el archivo")
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := fmt.Errorf("modifier: %w", forjaerrors.ErrGateway)
		assert.Equal(t, "El modelo de lenguaje devolvió un error.", forjaerrors.UserMessage(err))
	})

	t.Run("unknown error keeps its message", func(t *testing.T) {
		assert.Equal(t, "boom", forjaerrors.UserMessage(testError{msg: "boom"}))
	})
}

func TestActionable(t *testing.T) {
	msg, action := forjaerrors.Actionable(forjaerrors.ErrCapabilityNotFound)
	assert.NotEmpty(t, msg)
	assert.Contains(t, action, "capabilities")

	msg, action = forjaerrors.Actionable(nil)
	assert.Empty(t, msg)
	assert.Empty(t, action)
}
