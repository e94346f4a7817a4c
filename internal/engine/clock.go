package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// Callers pass its reading to Resolver.Next as "now".
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct {
	// Location is applied to every reading; nil keeps the local zone.
	Location *time.Location
}

// Now returns the current time in the clock's location.
func (c RealClock) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		return now.In(c.Location)
	}
	return now
}
