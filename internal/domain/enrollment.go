package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Enrollment commits one member to one session. At most one exists per
// (member, session) pair; there is no update or delete path.
type Enrollment struct {
	MemberID   string
	SessionID  string
	EnrolledAt time.Time
}

// RosterEntry is one enrolled member as shown to staff.
type RosterEntry struct {
	MemberID   string
	FirstName  string
	LastName   string
	Email      string
	EnrolledAt time.Time
}

// MaskEmail hides all but the first character of the local part. The first
// character is a full rune, not a byte, so multibyte names stay intact.
// Malformed addresses mask to the empty string.
func MaskEmail(email string) string {
	local, host, ok := strings.Cut(email, "@")
	if !ok || local == "" || host == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(local)
	return local[:size] + "***@" + host
}
