// Package system provides a wall-clock implementation of the engine's
// Clock dependency.
package system

import "time"

// Clock reads the system wall clock.
type Clock struct{}

// Now returns the current time.
func (Clock) Now() time.Time {
	return time.Now()
}
