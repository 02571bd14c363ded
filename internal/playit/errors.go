package playit

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when the service answers 204 to an account
// fetch or a login response carries no session cookie.
var ErrNotAuthenticated = errors.New("not logged in")

// TransportError wraps a network level failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a response status the operation does not understand.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// ParseError reports an account document that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse account snapshot: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
