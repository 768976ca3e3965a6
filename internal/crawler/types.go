package crawler

import (
	"net/http"
	"time"
)

// Task is the unit of work scheduled by the engine: one URL at one depth.
// Depth 0 is the seed.
type Task struct {
	URL   string
	Depth int
}

// TaskState describes how a task terminated. States are reported through
// progress events and logs; they are not persisted.
type TaskState string

// Terminal task states.
const (
	TaskSkipped        TaskState = "skipped"
	TaskFetchFailed    TaskState = "fetch_failed"
	TaskRecursed       TaskState = "recursed"
	TaskPruned         TaskState = "pruned"
	TaskDepthExhausted TaskState = "depth_exhausted"
)

// Page is the raw result of one fetch.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// ContentLength reports the body size in bytes.
func (p Page) ContentLength() int {
	return len(p.Body)
}

// Form describes a form element found on a page: its action target and the
// ordered names of its input fields. Forms are observed, never submitted.
type Form struct {
	Action string
	Fields []string
}

// Artifact is the extraction result of one fetched page. Link order matches
// document order and duplicates are permitted; deduplication is the visited
// registry's job, not the extractor's.
type Artifact struct {
	Links      []string
	TextBlocks []string
	Meta       map[string]string
	Forms      []Form
	MediaURLs  []string
	ScriptSrcs []string
	ScriptHits map[string]string
	Emails     []string

	// SuspectedError is set when the body carries exception or stack-trace
	// markers, a useful signal when auditing third-party sites.
	SuspectedError bool
}

// Text concatenates the extracted text blocks in document order.
func (a Artifact) Text() string {
	switch len(a.TextBlocks) {
	case 0:
		return ""
	case 1:
		return a.TextBlocks[0]
	}
	total := 0
	for _, b := range a.TextBlocks {
		total += len(b) + 1
	}
	buf := make([]byte, 0, total)
	for i, b := range a.TextBlocks {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, b...)
	}
	return string(buf)
}

// PageRecord is persisted for each successfully fetched page when a
// recorder is configured.
type PageRecord struct {
	RunID       string
	URL         string
	Depth       int
	StatusCode  int
	FetchedAt   time.Time
	DurationMs  int64
	ContentHash string
	Links       int
	MediaAssets int
}
