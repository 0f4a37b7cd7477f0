// Package storage provides path-addressed object storage backends.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no object exists at the requested path.
var ErrNotFound = errors.New("object not found")

// Object is a downloaded object: raw bytes plus the declared media type
// recorded at upload time.
type Object struct {
	Data        []byte
	ContentType string
}

// ObjectStorage is the interface for object persistence backends.
type ObjectStorage interface {
	// Upload stores data at path with the declared content type.
	Upload(ctx context.Context, path string, contentType string, data []byte) error
	// Download retrieves the object at path.
	Download(ctx context.Context, path string) (*Object, error)
	// Delete removes the object at path.
	Delete(ctx context.Context, path string) error
	// List returns the paths of stored objects under prefix ("" = all).
	List(ctx context.Context, prefix string) ([]string, error)
}
