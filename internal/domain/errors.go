package domain

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrRateLimited     = errors.New("rate limited")
	ErrExternalService = errors.New("external service error")
	// ErrConflict - losing writer of a concurrent conditional update.
	// Not an error for the system overall: the session was already advanced
	ErrConflict       = errors.New("concurrent update conflict")
	ErrSessionExists  = errors.New("active session already exists for this campaign")
	ErrReportTimedOut = errors.New("report polling timed out")
)
