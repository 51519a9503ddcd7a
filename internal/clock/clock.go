// Package clock isolates the one ambient input of the booking engine: what
// time it is. Services take a Clock instead of calling time.Now directly, so
// cutoff and validity checks can be exercised at any chosen instant.
package clock

import "time"

// Clock reports the current time. All implementations report UTC; downstream
// date math picks its own location explicitly.
type Clock interface {
	Now() time.Time
}

// NewSystem returns the wall clock.
func NewSystem() Clock {
	return wallClock{}
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now().UTC()
}

// NewFixed returns a clock frozen at t. Test code pairs it with fixtures
// whose timestamps are written relative to the same instant.
func NewFixed(t time.Time) Clock {
	return frozenClock{at: t.UTC()}
}

type frozenClock struct {
	at time.Time
}

func (c frozenClock) Now() time.Time {
	return c.at
}
