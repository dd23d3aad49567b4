package ports

import "time"

// Clock abstracts wall-clock reads so timer arithmetic is testable.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package
type RealClock struct{}

// Now returns the current time
func (RealClock) Now() time.Time {
	return time.Now()
}
