// utils/timeutil.go
package utils

import "time"

// WithinDeadline reports whether the wall clock has not yet passed deadline.
func WithinDeadline(deadline time.Time) bool {
	return time.Now().Before(deadline)
}

// ClampToDeadline returns d, shortened to the time remaining until deadline
// when that is smaller. Never negative.
func ClampToDeadline(d time.Duration, deadline time.Time) time.Duration {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0
	}
	if remaining < d {
		return remaining
	}
	return d
}
