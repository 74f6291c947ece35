package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthError(t *testing.T) {
	err := &AuthError{Status: 401, Message: "Invalid credentials"}
	assert.Equal(t, "auth failed: Invalid credentials", err.Error())
	assert.True(t, IsAuthError(err))
	assert.True(t, IsAuthError(fmt.Errorf("login: %w", err)))
	assert.False(t, IsAuthError(errors.New("plain")))
}

func TestAuthError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &AuthError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "auth failed: connection refused", err.Error())
}

func TestFetchError(t *testing.T) {
	err := &FetchError{Op: "fetch locations", Status: 500, Message: "Internal error"}
	assert.Equal(t, "fetch locations: Internal error", err.Error())

	bare := &FetchError{Op: "fetch locations", Status: 502}
	assert.Equal(t, "fetch locations: status 502", bare.Error())

	cause := errors.New("timeout")
	wrapped := &FetchError{Op: "update container", Err: cause}
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "update container: timeout", wrapped.Error())
}
