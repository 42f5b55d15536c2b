package model

import "time"

// LoginAttempt tracks failed admin-password verifications per client address.
// Stored in Postgres so the lockout survives restarts and is shared across
// instances.
type LoginAttempt struct {
	Address        string
	FailedAttempts int
	FirstAttempt   time.Time
	LockedUntil    *time.Time
}

// Locked reports whether the address is still inside its lockout window.
func (a *LoginAttempt) Locked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}
