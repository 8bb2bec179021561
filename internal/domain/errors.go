package domain

import "errors"

var (
	// ErrValidation marks malformed or contradictory request parameters.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced entity that no longer resolves.
	ErrNotFound = errors.New("not found")
)
