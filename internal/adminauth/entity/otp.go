// Package entity holds the domain types for admin authentication.
package entity

import "time"

// OTPChallenge is a pending one-time code issued to the admin identity.
//
// CodeHash stores the keyed hash of the code; the plaintext code only exists
// in the delivery email.
type OTPChallenge struct {
	ID        int64
	Identity  string
	CodeHash  string
	Attempts  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the challenge has passed its expiry at the given time.
func (c OTPChallenge) Expired(at time.Time) bool {
	return !at.Before(c.ExpiresAt)
}

// Session is the decoded content of a verified session token.
type Session struct {
	Identity  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
