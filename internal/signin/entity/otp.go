package entity

import (
	"errors"
	"time"
)

var (
	// ErrOTPNotFound indicates the presented code does not exist, was already
	// redeemed, or was evicted by the store.
	ErrOTPNotFound = errors.New("one-time code not found")

	// ErrOTPExpired indicates the code was found but its lifetime had already
	// passed. The record is consumed either way.
	ErrOTPExpired = errors.New("one-time code expired")
)

// OTPRecord is the server-side state bound to an issued one-time code. The
// code itself never appears here; the record is stored under a key derived
// from the code.
type OTPRecord struct {
	Identity  string    `json:"identity"`
	Channel   Channel   `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record's lifetime had passed at the given time.
func (r OTPRecord) Expired(at time.Time) bool {
	return at.After(r.ExpiresAt)
}
