// Package cache persists scalar orbit-analysis results keyed by operator.
//
// A Store performs raw I/O against a backend (a directory tree or a Badger
// database). A Cache sits in front of a Store, keeps loaded values in
// memory and writes changes back on Flush. Memoize combines the two with
// single-flight deduplication so concurrent requests for the same quantity
// compute it once.
package cache

import "context"

// Entry is a key-value pair. Keys are /-separated paths such as
// "results/3f2a..."; values are raw bytes.
type Entry struct {
	Key   string
	Value []byte
}

// Store translates between a storage backend and the key namespace.
// Implementations do not cache; every call performs I/O.
type Store interface {
	// List returns all keys in the store.
	List(ctx context.Context) ([]string, error)
	// Load retrieves entries for the given keys. A missing key fails the
	// call with ErrKeyNotFound.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save creates or overwrites entries.
	Save(ctx context.Context, entries ...Entry) error
	// Delete removes entries. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Close releases backend resources.
	Close() error
}
