package domain

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrPastSession        = errors.New("cannot enroll in a past session")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this session")
	ErrSessionFull        = errors.New("session is full")
	ErrNoValidEntitlement = errors.New("no valid package available")
	ErrDailyLimitReached  = errors.New("daily class limit reached")
	ErrScheduleOverlap    = errors.New("another enrolled class starts within the separation window")
	ErrForbidden          = errors.New("not allowed to view this session's roster")
	ErrInvalidID          = errors.New("invalid id")
)
