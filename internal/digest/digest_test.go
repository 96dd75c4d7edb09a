package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mentionpulse/alert-engine/internal/models"
)

func resultSentAt(id string, sentAt *time.Time) models.Result {
	return models.Result{ID: id, LastSentInDigestAt: sentAt}
}

func TestEligible_Instant(t *testing.T) {
	now := time.Now()
	recent := now.Add(-time.Minute)
	ancient := now.Add(-90 * 24 * time.Hour)

	results := []models.Result{
		resultSentAt("unsent", nil),
		resultSentAt("sent-recently", &recent),
		resultSentAt("sent-long-ago", &ancient),
	}

	eligible := Eligible(models.FrequencyInstant, results, now)

	// Instant alerts only ever pick up never-sent results.
	assert.Len(t, eligible, 1)
	assert.Equal(t, "unsent", eligible[0].ID)
}

func TestEligible_DigestWindows(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency models.Frequency
		sentAgo   time.Duration
		eligible  bool
	}{
		{"daily inside window", models.FrequencyDaily, 23 * time.Hour, false},
		{"daily outside window", models.FrequencyDaily, 25 * time.Hour, true},
		{"weekly inside window", models.FrequencyWeekly, 6 * 24 * time.Hour, false},
		{"weekly outside window", models.FrequencyWeekly, 8 * 24 * time.Hour, true},
		{"monthly inside window", models.FrequencyMonthly, 29 * 24 * time.Hour, false},
		{"monthly outside window", models.FrequencyMonthly, 31 * 24 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentAt := now.Add(-tt.sentAgo)
			results := []models.Result{resultSentAt("r1", &sentAt)}

			eligible := Eligible(tt.frequency, results, now)

			if tt.eligible {
				assert.Len(t, eligible, 1)
			} else {
				assert.Empty(t, eligible)
			}
		})
	}
}

func TestEligible_UnsentAlwaysIncluded(t *testing.T) {
	now := time.Now()
	results := []models.Result{resultSentAt("r1", nil)}

	for _, frequency := range []models.Frequency{
		models.FrequencyInstant,
		models.FrequencyDaily,
		models.FrequencyWeekly,
		models.FrequencyMonthly,
	} {
		assert.Len(t, Eligible(frequency, results, now), 1, "frequency %s", frequency)
	}
}

func TestEligible_PreservesOrder(t *testing.T) {
	now := time.Now()
	old := now.Add(-48 * time.Hour)

	results := []models.Result{
		resultSentAt("a", nil),
		resultSentAt("b", &old),
		resultSentAt("c", nil),
	}

	eligible := Eligible(models.FrequencyDaily, results, now)

	assert.Equal(t, []string{"a", "b", "c"}, []string{eligible[0].ID, eligible[1].ID, eligible[2].ID})
}

func TestWindow(t *testing.T) {
	assert.Equal(t, time.Duration(0), Window(models.FrequencyInstant))
	assert.Equal(t, 24*time.Hour, Window(models.FrequencyDaily))
	assert.Equal(t, 7*24*time.Hour, Window(models.FrequencyWeekly))
	assert.Equal(t, 30*24*time.Hour, Window(models.FrequencyMonthly))
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	assert.True(t, WindowStart(models.FrequencyInstant, now).IsZero())
	assert.Equal(t, now.Add(-24*time.Hour), WindowStart(models.FrequencyDaily, now))
}
