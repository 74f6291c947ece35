package api

import (
	"errors"
	"fmt"
)

// AuthError reports invalid credentials or an auth-request failure. Session
// state is left unchanged by the caller.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth failed: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("auth failed: %v", e.Err)
	}
	return fmt.Sprintf("auth failed: status %d", e.Status)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a failed read or write against the REST collaborator.
// On reads, callers keep their prior in-memory state; on writes, nothing was
// mutated optimistically.
type FetchError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
