package server

import "errors"

// Server-specific errors
var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrTooManySessions      = errors.New("maximum sessions reached")
	ErrUnknownMessage       = errors.New("unknown message type")
	ErrMissingField         = errors.New("required field missing")
	ErrInvalidMessage       = errors.New("invalid message")
)
