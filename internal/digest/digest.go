// Package digest decides which results are eligible for the current send of
// an alert, based on its frequency and each result's dedup marker.
package digest

import (
	"time"

	"github.com/mentionpulse/alert-engine/internal/models"
)

// Window returns the digest window for a frequency, or zero for instant
// alerts (no window logic).
func Window(frequency models.Frequency) time.Duration {
	switch frequency {
	case models.FrequencyDaily:
		return 24 * time.Hour
	case models.FrequencyWeekly:
		return 7 * 24 * time.Hour
	case models.FrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// WindowStart returns the boundary before which a previously stamped result
// becomes eligible again. For instant alerts it returns the zero time: only
// never-sent results qualify.
func WindowStart(frequency models.Frequency, now time.Time) time.Time {
	window := Window(frequency)
	if window == 0 {
		return time.Time{}
	}
	return now.Add(-window)
}

// Eligible filters results down to the subset that may be included in the
// current send. Evaluation has no side effects; the caller stamps
// LastSentInDigestAt after a dispatch attempt is made.
//
// A result re-stamped inside the current window is excluded; one whose mark
// is older than the window boundary resurfaces, so an undelivered result is
// retried in the next window.
func Eligible(frequency models.Frequency, results []models.Result, now time.Time) []models.Result {
	windowStart := WindowStart(frequency, now)

	var eligible []models.Result
	for _, result := range results {
		if result.LastSentInDigestAt == nil {
			eligible = append(eligible, result)
			continue
		}
		if !windowStart.IsZero() && result.LastSentInDigestAt.Before(windowStart) {
			eligible = append(eligible, result)
		}
	}

	return eligible
}
