// Package hash provides helpers for hashing and verifying short secrets.
//
// Typical usage is deriving store keys from one-time codes: only the keyed
// hash touches the store, so a leaked snapshot exposes nothing replayable.
package hash
