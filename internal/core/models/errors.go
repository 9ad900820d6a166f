package models

import "errors"

var (
	ErrBodyNotFound    = errors.New("body not found")
	ErrDuplicateBody   = errors.New("body already registered")
	ErrInvalidCapacity = errors.New("eviction capacity must be positive")
	ErrUnknownEviction = errors.New("unknown eviction policy")
)
