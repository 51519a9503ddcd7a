package domain

import "time"

// EntitlementPackage is a consumable allotment of class credits. The engine
// only ever decrements RemainingCount; replenishment is an admin concern.
type EntitlementPackage struct {
	ID             string
	MemberID       string
	Kind           string
	RemainingCount int
	ExpiresOn      time.Time // date precision; compared against the booking day
}

// Eligible reports whether the package can pay for an enrollment on the given
// day: at least one credit left and not yet expired.
func (p EntitlementPackage) Eligible(today time.Time) bool {
	if p.RemainingCount <= 0 {
		return false
	}
	y1, m1, d1 := p.ExpiresOn.Date()
	y2, m2, d2 := today.Date()
	expires := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	day := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return !expires.Before(day)
}

// MembershipSummary is the manager-facing overview row: a package joined with
// its owner's name.
type MembershipSummary struct {
	MemberID       string
	MemberName     string
	Kind           string
	RemainingCount int
	ExpiresOn      time.Time
}
