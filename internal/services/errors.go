package services

import "errors"

// Store-level error taxonomy. Handlers map these onto HTTP status codes;
// anything not matching a sentinel is treated as an internal failure.
var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
)
