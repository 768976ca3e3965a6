// Package storage defines the blob store abstraction behind the media
// pipeline. Implementations cover the local filesystem, an in-memory
// store for tests, and Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"io"
)

// BlobStore persists a named blob and returns the URI where it landed.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// NoOpStore discards blobs. It is useful for dry runs where pages are
// fetched and classified but nothing is persisted.
type NoOpStore struct{}

// PutObject drains the reader and reports a null URI.
func (NoOpStore) PutObject(_ context.Context, path string, _ string, data io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, data); err != nil {
		return "", fmt.Errorf("drain blob: %w", err)
	}
	return "noop://" + path, nil
}
