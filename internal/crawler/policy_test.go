package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_ShouldFetch(t *testing.T) {
	t.Parallel()
	cfg := Config{FollowLinks: true, MaxDepth: 2}

	t.Run("allows unvisited urls within depth", func(t *testing.T) {
		t.Parallel()
		p := NewPolicy(cfg, nil)
		assert.True(t, p.ShouldFetch(context.Background(), Task{URL: "http://a.test/", Depth: 2}, NewVisitedSet()))
	})

	t.Run("rejects beyond the depth bound", func(t *testing.T) {
		t.Parallel()
		p := NewPolicy(cfg, nil)
		assert.False(t, p.ShouldFetch(context.Background(), Task{URL: "http://a.test/", Depth: 3}, NewVisitedSet()))
	})

	t.Run("rejects visited urls", func(t *testing.T) {
		t.Parallel()
		p := NewPolicy(cfg, nil)
		visited := NewVisitedSet()
		visited.Mark("http://a.test/")
		assert.False(t, p.ShouldFetch(context.Background(), Task{URL: "http://a.test/", Depth: 0}, visited))
	})

	t.Run("consults the robots policy", func(t *testing.T) {
		t.Parallel()
		robots := new(MockRobotsPolicy)
		robots.On("Allowed", context.Background(), "http://a.test/private").Return(false)
		p := NewPolicy(cfg, robots)
		assert.False(t, p.ShouldFetch(context.Background(), Task{URL: "http://a.test/private", Depth: 0}, NewVisitedSet()))
		robots.AssertExpectations(t)
	})
}

func TestPolicy_ShouldRecurse(t *testing.T) {
	t.Parallel()

	t.Run("follow links disabled never recurses", func(t *testing.T) {
		t.Parallel()
		p := NewPolicy(Config{FollowLinks: false, MaxDepth: 5}, nil)
		assert.False(t, p.ShouldRecurse(Task{Depth: 0}, Artifact{}))
	})

	t.Run("depth bound is inclusive for fetching, exclusive for recursion", func(t *testing.T) {
		t.Parallel()
		p := NewPolicy(Config{FollowLinks: true, MaxDepth: 2}, nil)
		assert.True(t, p.ShouldRecurse(Task{Depth: 1}, Artifact{}))
		assert.False(t, p.ShouldRecurse(Task{Depth: 2}, Artifact{}))
	})

	t.Run("target phrase gates recursion", func(t *testing.T) {
		t.Parallel()
		p := NewPolicy(Config{FollowLinks: true, MaxDepth: 3, TargetPhrase: "golden thread"}, nil)
		with := Artifact{TextBlocks: []string{"spun from a golden thread today"}}
		without := Artifact{TextBlocks: []string{"nothing to see"}}
		assert.True(t, p.ShouldRecurse(Task{Depth: 0}, with))
		assert.False(t, p.ShouldRecurse(Task{Depth: 0}, without))
	})

	t.Run("phrase match is case sensitive", func(t *testing.T) {
		t.Parallel()
		p := NewPolicy(Config{FollowLinks: true, MaxDepth: 3, TargetPhrase: "Needle"}, nil)
		assert.False(t, p.ShouldRecurse(Task{Depth: 0}, Artifact{TextBlocks: []string{"needle"}}))
	})
}
