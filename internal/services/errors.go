package services

import "errors"

var (
	// ErrForbidden means the caller's capability set does not allow the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput wraps request values the domain rejects.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned by login for unknown users, bad passwords and missing profiles.
	ErrUnauthorized = errors.New("invalid email or password")
)
