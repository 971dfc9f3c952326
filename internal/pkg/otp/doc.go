// Package otp generates the one-time codes used by passwordless signin.
//
// Codes are opaque random tokens, not time-based passwords. Each code is
// issued once, stored server-side under a derived key, and consumed on first
// redemption.
package otp
