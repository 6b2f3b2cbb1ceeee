package session

import "errors"

// Errors surfaced at the session boundary.
var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidInput = errors.New("invalid input")
)
