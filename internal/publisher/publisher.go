// Package publisher defines the outbound notification interface used to
// announce completed scrape runs.
package publisher

import "context"

// Publisher announces a payload on a topic and returns the message ID.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// RunSummary is the payload published when a scrape run finishes.
type RunSummary struct {
	RunID      string `json:"run_id"`
	Seed       string `json:"seed"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}
