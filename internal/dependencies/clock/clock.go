package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock in a fixed location.
// Week keys are derived from Now, so the location decides when a week rolls over.
type RealClock struct {
	loc *time.Location
}

// New creates a RealClock reporting times in loc (UTC if nil)
func New(loc *time.Location) *RealClock {
	if loc == nil {
		loc = time.UTC
	}
	return &RealClock{loc: loc}
}

// Now returns the current time in the clock's location
func (c *RealClock) Now() time.Time {
	return time.Now().In(c.loc)
}
