// Package storage provides the durable key-value facility the session
// store persists credentials into. Values survive process restarts and
// live until explicitly deleted.
package storage

import "github.com/pkg/errors"

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("key not found")

// Storage defines the interface for durable key-value operations.
// Implementations are synchronous and client-local.
type Storage interface {
	// Get retrieves the value for a key, ErrNotFound if absent
	Get(key string) (string, error)

	// Set writes or replaces the value for a key
	Set(key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases any underlying resources
	Close() error
}
