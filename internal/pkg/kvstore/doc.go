// Package kvstore defines a small key/value store abstraction with the two
// atomic primitives the signin flows depend on: a single round trip
// fetch-and-delete and a bounded check-and-increment counter.
//
// Two drivers are provided. The Redis driver is the production store; the
// memory driver implements the same contract for tests and local runs.
package kvstore
