package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotAuthenticated is returned before any network traffic happens
	// when no credentials can be found.
	ErrNotAuthenticated = errors.New("not authenticated, run 'esctl auth login' to authenticate")

	// ErrWaitTimeout is returned by wait loops that gave up while the
	// search was still running server-side.
	ErrWaitTimeout = errors.New("timeout reached, search still running")
)

// ConnectError wraps a transport-level failure. There is no response to
// interpret, so status handlers never apply to it.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connection error: %s", e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response that no status handler downgraded.
// Message is set when a handler supplied its own wording.
type StatusError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, body)
	}
	return fmt.Sprintf("HTTP error %d", e.StatusCode)
}
