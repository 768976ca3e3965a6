package crawler

import (
	"context"
	"strings"
)

// Policy decides, per task, whether to fetch and whether to recurse. It
// owns no mutable traversal state; the visited registry and config are
// supplied by the engine.
type Policy struct {
	cfg    Config
	robots RobotsPolicy
}

// NewPolicy builds a Policy. robots may be nil, which disables robots
// enforcement entirely.
func NewPolicy(cfg Config, robots RobotsPolicy) *Policy {
	return &Policy{cfg: cfg, robots: robots}
}

// ShouldFetch reports whether the task's URL should be fetched at all.
// False when the URL was already visited, the task exceeds the depth
// bound, or robots rules disallow the path. A robots block consumes no
// fetch: the ruleset is cached per host by the RobotsPolicy.
func (p *Policy) ShouldFetch(ctx context.Context, task Task, visited *VisitedSet) bool {
	if task.Depth > p.cfg.MaxDepth {
		return false
	}
	if visited.Contains(task.URL) {
		return false
	}
	if p.robots != nil && !p.robots.Allowed(ctx, task.URL) {
		TotalRobotsBlocked.Inc()
		return false
	}
	return true
}

// ShouldRecurse reports whether the links extracted from a page should
// spawn child tasks. MaxDepth is an inclusive bound: a page fetched at
// depth == MaxDepth is extracted but spawns no children. When a target
// phrase is configured, a page whose text lacks the phrase prunes its
// subtree; the match is a case-sensitive substring test.
func (p *Policy) ShouldRecurse(task Task, artifact Artifact) bool {
	if !p.cfg.FollowLinks {
		return false
	}
	if task.Depth >= p.cfg.MaxDepth {
		return false
	}
	if p.cfg.TargetPhrase != "" && !strings.Contains(artifact.Text(), p.cfg.TargetPhrase) {
		return false
	}
	return true
}
