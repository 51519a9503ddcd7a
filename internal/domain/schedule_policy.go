package domain

import "time"

// Schedule policy defaults. Sessions are modeled as fixed-length blocks, so
// the separation window equals the session length.
const (
	DefaultSessionLength = 2 * time.Hour
	DefaultDailyLimit    = 2
)

// SchedulePolicy evaluates a candidate session start against a member's
// existing enrollments. It is stateless: callers supply the start times of
// every session the member is already enrolled in.
type SchedulePolicy struct {
	// SessionLength is the fixed class duration, which doubles as the
	// minimum separation between two of a member's session start times.
	SessionLength time.Duration
	// DailyLimit is the maximum number of enrollments per calendar day.
	DailyLimit int
	// DayLocation fixes the midnight-to-midnight boundary for the daily
	// limit. Nil means UTC.
	DayLocation *time.Location
}

// DefaultSchedulePolicy returns the standing gym policy: two-hour blocks,
// at most two classes per member per day, UTC day boundaries.
func DefaultSchedulePolicy() SchedulePolicy {
	return SchedulePolicy{
		SessionLength: DefaultSessionLength,
		DailyLimit:    DefaultDailyLimit,
	}
}

// BookingDay resolves t to its calendar date in the policy's location,
// normalized to midnight UTC so callers can compare it date-to-date against
// package expiries without picking up a wall-clock offset.
func (p SchedulePolicy) BookingDay(t time.Time) time.Time {
	loc := p.DayLocation
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Check returns ErrDailyLimitReached or ErrScheduleOverlap if enrolling in a
// session starting at candidate would violate the policy, nil otherwise.
// The daily limit is evaluated before the separation window, so a session
// that violates both reports the daily limit.
func (p SchedulePolicy) Check(candidate time.Time, existing []time.Time) error {
	loc := p.DayLocation
	if loc == nil {
		loc = time.UTC
	}

	sameDay := 0
	cy, cm, cd := candidate.In(loc).Date()
	for _, start := range existing {
		y, m, d := start.In(loc).Date()
		if y == cy && m == cm && d == cd {
			sameDay++
		}
	}
	if sameDay >= p.DailyLimit {
		return ErrDailyLimitReached
	}

	for _, start := range existing {
		gap := candidate.Sub(start)
		if gap < 0 {
			gap = -gap
		}
		// A gap of exactly one session length is allowed: back-to-back
		// classes do not overlap.
		if gap < p.SessionLength {
			return ErrScheduleOverlap
		}
	}
	return nil
}
