// Package database persists per-page scrape metadata. The Provider
// interface decouples the engine from Postgres so tests and local runs
// can use the no-op implementation.
package database

import (
	"context"

	"github.com/sitehound/sitehound/internal/crawler"
)

// Provider is the persistence layer for page records.
type Provider interface {
	// RecordPage saves the metadata of one fetched page and returns the
	// record's ID.
	RecordPage(ctx context.Context, record crawler.PageRecord) (string, error)

	// ListPages returns the records of a run, most recent first.
	ListPages(ctx context.Context, runID string, limit, offset int) ([]crawler.PageRecord, error)

	// Close terminates the database connection and releases resources.
	Close() error
}

// NoOpProvider discards records. Useful for dry runs and tests.
type NoOpProvider struct{}

// RecordPage does nothing and returns a placeholder ID.
func (NoOpProvider) RecordPage(_ context.Context, _ crawler.PageRecord) (string, error) {
	return "noop-page-id", nil
}

// ListPages returns no records.
func (NoOpProvider) ListPages(_ context.Context, _ string, _, _ int) ([]crawler.PageRecord, error) {
	return nil, nil
}

// Close does nothing.
func (NoOpProvider) Close() error { return nil }
