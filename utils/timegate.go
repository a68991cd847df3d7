// utils/timegate.go
package utils

import (
	"fmt"
	"time"
)

// All instants are stored and compared in UTC. Conversion to a display
// timezone is a view concern and never enters these checks.

// CutoffTime returns the instant after which predictions are locked:
// start time minus the configured lead.
func CutoffTime(startUTC time.Time, cutoffMins int) time.Time {
	return startUTC.Add(-time.Duration(cutoffMins) * time.Minute)
}

// DeadlinePassed reports whether now is at or past the cutoff.
// Exactly at the cutoff counts as passed.
func DeadlinePassed(startUTC time.Time, cutoffMins int, now time.Time) bool {
	return !now.Before(CutoffTime(startUTC, cutoffMins))
}

// MatchStarted reports whether now is at or past the start instant.
func MatchStarted(startUTC time.Time, now time.Time) bool {
	return !now.Before(startUTC)
}

// TimeLeftLabel renders the remaining window as "2h 15m left" (or "Closed").
func TimeLeftLabel(startUTC time.Time, cutoffMins int, now time.Time) string {
	if DeadlinePassed(startUTC, cutoffMins, now) {
		return "Closed"
	}
	left := CutoffTime(startUTC, cutoffMins).Sub(now)
	mins := int(left.Minutes())
	hours := mins / 60
	mins = mins % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm left", hours, mins)
	}
	return fmt.Sprintf("%dm left", mins)
}
