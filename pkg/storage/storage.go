// Package storage defines the object store contract used for label artwork.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotConfigured is returned when an operation needs a store that was not wired.
var ErrNotConfigured = errors.New("object store not configured")

// Object describes a stored blob.
type Object struct {
	Name        string
	URL         string
	ContentType string
	Size        int64
}

// ObjectStore uploads and deletes objects in the default bucket.
type ObjectStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (Object, error)
	Delete(ctx context.Context, name string) error
}
