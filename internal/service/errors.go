package service

import "errors"

// Sentinel errors returned by AuthService. Handlers map them to HTTP
// statuses; the HTTP layer answers ErrUserNotFound and ErrInvalidPassword
// with the same generic message.
var (
	ErrValidation      = errors.New("name, email and password are required")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrStore           = errors.New("store failure")
)
