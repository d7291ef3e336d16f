package errors_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/agentstation/rubrica/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "mapping.email",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field mapping.email: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
		assert.True(t, pkgerrors.IsFatal(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("", nil, "csv has no data rows")
		assert.Equal(t, "validation failed: csv has no data rows", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestParseError(t *testing.T) {
	base := errors.New("illegal base64 data at input byte 4")
	err := pkgerrors.WrapParse("base64", "content", base)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64 parse error in content")
	assert.True(t, pkgerrors.IsDecodeError(err))
	assert.True(t, pkgerrors.IsFatal(err))
	assert.ErrorIs(t, err, base)

	var pe *pkgerrors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "base64", pe.Format)

	assert.NoError(t, pkgerrors.WrapParse("csv", "", nil))
}

func TestRowError(t *testing.T) {
	err := pkgerrors.NewRowError(7, pkgerrors.ErrMissingEmail)

	assert.Equal(t, "missing email", err.Error())
	assert.ErrorIs(t, err, pkgerrors.ErrMissingEmail)
	assert.False(t, pkgerrors.IsFatal(err))
	assert.Equal(t, "row 3 failed", (&pkgerrors.RowError{Row: 3}).Error())
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		rateLimited bool
		unavailable bool
		keyInvalid  bool
	}{
		{name: "rate limited", status: 429, rateLimited: true},
		{name: "server error", status: 502, unavailable: true},
		{name: "unauthorized", status: 401, keyInvalid: true},
		{name: "bad request", status: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("notion", tt.status, "boom")
			assert.Contains(t, err.Error(), "notion")
			assert.Equal(t, tt.rateLimited, pkgerrors.IsRateLimited(err))
			assert.Equal(t, tt.unavailable, pkgerrors.IsProviderUnavailable(err))
			assert.Equal(t, tt.keyInvalid, pkgerrors.IsAPIKeyError(err))
		})
	}

	t.Run("wrapped cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := pkgerrors.WrapAPI("openai", 0, cause)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "API error from openai: connection reset", err.Error())
	})
}

func TestStepError(t *testing.T) {
	cause := errors.New("timeout")
	err := &pkgerrors.StepError{Step: "fuzzy", Name: "Barzano", Err: cause}

	assert.Equal(t, `resolution step fuzzy for "Barzano" failed: timeout`, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestAuthenticationError(t *testing.T) {
	err := pkgerrors.NewAuthenticationError("notion", "bearer", "token not configured", nil)
	assert.True(t, pkgerrors.IsAPIKeyError(err))
	assert.Equal(t, "authentication error for notion (bearer): token not configured", err.Error())
}

func TestConfigAndIOErrors(t *testing.T) {
	cause := errors.New("permission denied")

	cfgErr := pkgerrors.NewConfigError("assistant", "unknown provider", cause)
	assert.Equal(t, "configuration error in assistant: unknown provider", cfgErr.Error())
	assert.ErrorIs(t, cfgErr, cause)

	ioErr := pkgerrors.WrapIO("read", "contacts.csv", cause)
	assert.Equal(t, "IO error during read of contacts.csv: permission denied", ioErr.Error())
	assert.Nil(t, pkgerrors.WrapIO("read", "x", nil))
}
