package backend

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for keys that do not exist
var ErrNotFound = errors.New("key not found")

// Backend defines the interface for revision storage backends
type Backend interface {
	// Put stores data with the given key
	Put(ctx context.Context, key string, data io.Reader, size int64) error

	// Get retrieves data by key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes data by key
	Delete(ctx context.Context, key string) error

	// List returns keys with the given prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if a key exists
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases backend resources
	Close() error
}
