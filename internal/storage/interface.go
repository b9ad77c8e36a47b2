package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Get for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage stores run snapshots as whole objects.
type ObjectStorage interface {
	// Put writes data under key, replacing any previous object
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get reads the object stored under key
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the URL for accessing an object
	GetURL(key string) string
}
