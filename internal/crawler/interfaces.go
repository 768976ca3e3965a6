package crawler

import (
	"context"
	"time"
)

// Fetcher fetches a single URL and returns the page or a classified
// *FetchError. Implementations never retry and never follow extracted
// links; traversal belongs to the engine.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// RobotsPolicy decides whether a URL may be fetched under robots.txt
// rules. Implementations cache rulesets per host and treat a failed
// robots fetch as permissive.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// RetryPolicy lets the engine retry transient fetch failures. The fetch
// adapter itself never retries; the policy is consulted by the caller.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// Solver resolves a CAPTCHA challenge asset into a token. External
// capability; the engine only detects challenges and routes them here.
// The challenge payload is nil for script-only challenges that carry no
// downloadable asset; implementations must accept an empty payload.
type Solver interface {
	Solve(ctx context.Context, challenge []byte) (string, error)
}

// MediaSink persists a downloadable asset. Implementations receive the
// asset's source URL and a suggested filename; they own all I/O.
type MediaSink interface {
	Store(ctx context.Context, sourceURL, suggestedName string) (string, error)
}

// PageRecorder persists per-page metadata for successfully fetched pages.
type PageRecorder interface {
	RecordPage(ctx context.Context, record PageRecord) (string, error)
}

// ErrorLog is an append-only failure sink. Record must never fail loudly;
// losing a log line is preferable to aborting a run.
type ErrorLog interface {
	Record(context string, err error)
}

// PageHandler is a caller-supplied hook invoked with every successfully
// fetched page and its extracted artifact.
type PageHandler interface {
	Handle(ctx context.Context, page Page, artifact Artifact) error
}

// PageHandlerFunc adapts a function to the PageHandler interface.
type PageHandlerFunc func(ctx context.Context, page Page, artifact Artifact) error

// Handle implements PageHandler.
func (f PageHandlerFunc) Handle(ctx context.Context, page Page, artifact Artifact) error {
	return f(ctx, page, artifact)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Hasher digests page content for change detection in page records.
type Hasher interface {
	Hash(data []byte) string
}
