package store

import "errors"

// Sentinel errors surfaced to the CLI for exit-code mapping.
var (
	ErrNotFound         = errors.New("todo not found")
	ErrAlreadyCompleted = errors.New("todo is already completed")
	ErrEmptyTitle       = errors.New("title must not be empty")
)
