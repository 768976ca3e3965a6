package crawler

import "sync"

// VisitedSet tracks which normalized URLs a run has already scheduled.
// Insertion is append-only: once a URL is marked it is never removed.
// All operations are safe for concurrent use so a future parallel
// traversal can share one set; check-then-mark is a single critical
// section via MarkIfNew.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet returns an empty registry. Each run owns exactly one.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// Contains reports whether the normalized URL has been marked.
func (v *VisitedSet) Contains(normalized string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.seen[normalized]
	return ok
}

// Mark records the URL. Idempotent.
func (v *VisitedSet) Mark(normalized string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seen[normalized] = struct{}{}
}

// MarkIfNew atomically marks the URL and reports true when it was unseen.
func (v *VisitedSet) MarkIfNew(normalized string) bool {
	if normalized == "" {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[normalized]; ok {
		return false
	}
	v.seen[normalized] = struct{}{}
	return true
}

// Len reports how many distinct URLs have been marked.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
