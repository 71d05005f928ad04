// Package store persists named script sources.
//
// A store holds source text, not compiled expressions: compilation is cheap
// and deterministic, so a library recompiles on load and the stored form
// stays readable and diffable.
package store

import (
	"errors"
	"time"
)

// Store persists script sources by name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores source under name, replacing any previous revision.
	Save(name, source string) error

	// Load returns the source stored under name.
	// Returns ErrNotFound if the script doesn't exist.
	Load(name string) (string, error)

	// List returns metadata for every script, oldest revision first.
	// Returns an empty slice (not error) when the store is empty.
	List() ([]Info, error)

	// Delete removes a script. Returns nil if it doesn't exist.
	Delete(name string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes a stored script without its source.
type Info struct {
	Name string
	// Revision increases across the whole store on every Save, so it
	// orders scripts by last modification.
	Revision int64
	Updated  time.Time
	Size     int64
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a script doesn't exist.
	ErrNotFound = errors.New("script not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("script store closed")

	// ErrInvalidName indicates an empty script name.
	ErrInvalidName = errors.New("invalid script name")
)
