// Package uuid provides the run ID generator used by the dispatcher.
package uuid

import guuid "github.com/google/uuid"

// Generator produces random (v4) UUIDs.
type Generator struct{}

// NewID returns a fresh UUID.
func (Generator) NewID() guuid.UUID {
	return guuid.New()
}
