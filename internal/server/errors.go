package server

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrServerStopped    = errors.New("server stopped")
	ErrServerRunning    = errors.New("server already listening")
	ErrNotListening     = errors.New("server not listening")
	ErrInvalidPort      = errors.New("invalid port")
)

// BindError reports that the loopback listener could not be opened.
type BindError struct {
	Port int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind 127.0.0.1:%d: %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// AuthError is an error reported by the identity provider on the callback request.
type AuthError struct {
	Code        string
	Description string
}

func (e *AuthError) Error() string {
	if e.Description == "" {
		return "authentication error: " + e.Code
	}
	return fmt.Sprintf("authentication error: %s: %s", e.Code, e.Description)
}
