package smartgen

import "time"

// Clock abstracts time for the reconnect loop so the backoff sequence
// can be driven deterministically in tests.
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// After returns a channel that fires once d has elapsed
	After(d time.Duration) <-chan time.Time
}

// systemClock is the real implementation backed by package time
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
