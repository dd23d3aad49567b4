package ports

import "errors"

// ErrNotFound is returned by store lookups when no record exists.
var ErrNotFound = errors.New("not found")

// CollectionStore defines the interface for a durable keyed collection of
// JSON documents (templates, themes). Implementations must make ReplaceAll
// atomic: either the whole collection is swapped or nothing changes.
type CollectionStore interface {
	// All returns every record's raw JSON value keyed by id.
	All() (map[string][]byte, error)

	// Get returns one record, or ErrNotFound.
	Get(id string) ([]byte, error)

	// Put inserts or overwrites one record.
	Put(id string, value []byte) error

	// Delete removes one record. Deleting a missing id is not an error.
	Delete(id string) error

	// ReplaceAll atomically swaps the entire collection.
	ReplaceAll(records map[string][]byte) error
}

// SettingsStore defines the interface for durable single-value state
// (settings blob, active theme id, last slide index).
type SettingsStore interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set stores the value for key.
	Set(key string, value []byte) error
}
