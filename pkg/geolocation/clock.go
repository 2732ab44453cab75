package geolocation

import "time"

// Clock provides time and timers for the coordinator. The default
// implementation uses system time. Tests inject a fake clock via WithClock
// to drive timeouts deterministically.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f on its own goroutine after d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled callback that can be stopped before it fires.
type Timer interface {
	// Stop prevents the timer from firing. It reports false if the timer
	// already fired or was stopped.
	Stop() bool
}

// systemClock uses system time.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns the Clock backed by the time package.
func SystemClock() Clock { return systemClock{} }
