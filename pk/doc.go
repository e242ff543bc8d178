// Package pk provides the primary-key index of a dataset.
//
// An Index maps canonical key values (record.Value.Key) to row positions. It is
// built once, is immutable afterwards, and is safe for concurrent lookups
// without locking.
package pk
