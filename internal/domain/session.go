package domain

import "time"

// Session is a scheduled class occurrence. Capacity and start time are owned
// by admin tooling; the engine reads them but never mutates them.
type Session struct {
	ID        string
	ClassType string
	StartsAt  time.Time
	Capacity  int
	BranchID  string
	CoachID   string // empty when no coach is assigned
}

// SessionAvailability is the calendar read model: a session joined with its
// display attributes and the derived seat count.
type SessionAvailability struct {
	ID         string
	ClassType  string
	StartsAt   time.Time
	BranchID   string
	BranchName string
	CoachID    string
	CoachName  string
	Capacity   int
	Enrolled   int
}

// Available returns the remaining seat count, clamped at zero.
func (s SessionAvailability) Available() int {
	if n := s.Capacity - s.Enrolled; n > 0 {
		return n
	}
	return 0
}
