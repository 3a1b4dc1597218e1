// Package kv provides the durable key-value substrate for the catalog
// snapshot and visitor behavior records. The core services only see this
// interface, so tests run against the in-memory implementation.
package kv

// Store is a string-keyed durable store. Get reports presence explicitly so
// a missing key is not an error.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
