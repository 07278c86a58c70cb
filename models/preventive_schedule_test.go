package models

import (
	"testing"
	"time"
)

func TestNextOccurrence(t *testing.T) {
	from := time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		frequency    Frequency
		intervalDays int
		want         time.Time
	}{
		{"daily", FrequencyDaily, 0, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)},
		{"weekly", FrequencyWeekly, 0, time.Date(2026, 2, 7, 8, 0, 0, 0, time.UTC)},
		// Jan 31 + 1 month normalizes to Mar 3 (no Feb 31)
		{"monthly end-of-month normalization", FrequencyMonthly, 0, time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)},
		{"yearly", FrequencyYearly, 0, time.Date(2027, 1, 31, 8, 0, 0, 0, time.UTC)},
		{"custom interval", FrequencyCustom, 45, time.Date(2026, 3, 17, 8, 0, 0, 0, time.UTC)},
		{"custom floor of one day", FrequencyCustom, 0, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextOccurrence(from, tc.frequency, tc.intervalDays)
			if !got.Equal(tc.want) {
				t.Fatalf("NextOccurrence(%s, %d) = %s; want %s",
					tc.frequency, tc.intervalDays, got, tc.want)
			}
		})
	}
}

func TestProcessStatusTransitions(t *testing.T) {
	allowed := map[ProcessStatus]map[ProcessStatus]bool{
		ProcessStatusPending: {
			ProcessStatusInProgress: true,
			ProcessStatusCompleted:  false,
			ProcessStatusPending:    false,
		},
		ProcessStatusInProgress: {
			ProcessStatusCompleted:  true,
			ProcessStatusPending:    false,
			ProcessStatusInProgress: false,
		},
		ProcessStatusCompleted: {
			ProcessStatusPending:    false,
			ProcessStatusInProgress: false,
			ProcessStatusCompleted:  false,
		},
	}
	for from, nexts := range allowed {
		for next, want := range nexts {
			if got := from.CanTransitionTo(next); got != want {
				t.Fatalf("%s -> %s = %v; want %v", from, next, got, want)
			}
		}
	}
}
