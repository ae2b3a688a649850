package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrAPI,
		ErrShell,
		ErrParse,
		ErrTranslate,
		ErrExec,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "No profiles are configured",
			suggestion: "Run 'talon profiles new' to set one up",
		},
		{
			name:       "api error",
			code:       ErrAPI,
			message:    "Device metadata lookup failed",
			suggestion: "Check your API credentials and network connectivity",
		},
		{
			name:       "parse error",
			code:       ErrParse,
			message:    "Missing required argument: file",
			suggestion: "Type 'help cat' for usage",
		},
		{
			name:       "translate error",
			code:       ErrTranslate,
			message:    "You must specify a value name, type and data together",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormat(t *testing.T) {
	err := WrapWithCode(
		errors.New("underlying failure"),
		ErrAPI,
		"Batch session connect failed",
		"Check that the devices exist",
	)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "✗ Batch session connect failed"))
	assert.Contains(t, msg, "underlying failure")
	assert.Contains(t, msg, "Check that the devices exist")
}

func TestWrapDefaultsToAPI(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, "something failed")

	assert.Equal(t, ErrAPI, err.Code)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestIsCode(t *testing.T) {
	err := New(ErrParse, "bad input", "")

	assert.True(t, IsCode(err, ErrParse))
	assert.False(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(nil, ErrParse))
	assert.False(t, IsCode(errors.New("plain"), ErrParse))

	// Wrapped errors should still match via errors.As.
	wrapped := Wrap(err, "outer")
	assert.True(t, IsCode(wrapped, ErrAPI))
}
