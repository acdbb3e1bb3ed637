package util

import (
	"time"
)

// FormatETA extrapolates the remaining wall time from the work done so
// far. Returns "?" before any progress has been made.
func FormatETA(elapsed time.Duration, done, total int) string {
	if done <= 0 || total <= done {
		if total <= done {
			return "0s"
		}
		return "?"
	}
	perUnit := elapsed / time.Duration(done)
	remaining := perUnit * time.Duration(total-done)
	return remaining.Round(time.Second).String()
}
