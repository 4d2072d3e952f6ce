package service

import (
	"errors"

	"github.com/wakili/backend/internal/repository"
)

var (
	// ErrNotFound is returned when the addressed resource does not exist or is hidden.
	ErrNotFound = repository.ErrNotFound
	// ErrForbidden is returned when the caller may not touch the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when the request clashes with the current state.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized is returned for missing, unknown or expired sessions.
	ErrUnauthorized = errors.New("unauthorized")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCode        = errors.New("invalid code")
	ErrCodeExpired        = errors.New("code expired")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionExpired     = errors.New("session expired")

	ErrLawyerUnavailable  = errors.New("lawyer unavailable")
	ErrBookingNotEditable = errors.New("booking cannot be cancelled")
)
