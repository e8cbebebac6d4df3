package app

import (
	"testing"
	"time"

	"github.com/remitflow/remit-service/internal/domain"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return ts
}

func TestNextDatesWeekly(t *testing.T) {
	start := mustParse(t, "2024-01-01T00:00:00Z")

	got := NextDates(domain.FrequencyWeekly, start, 3)

	want := []string{
		"2024-01-01T00:00:00Z",
		"2024-01-08T00:00:00Z",
		"2024-01-15T00:00:00Z",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i] != mustParse(t, w) {
			t.Fatalf("position %d: expected %s, got %s", i, w, got[i].Format(time.RFC3339))
		}
	}
}

func TestNextDatesBiWeeklyAndQuarterly(t *testing.T) {
	start := mustParse(t, "2024-03-15T09:30:00Z")

	biweekly := NextDates(domain.FrequencyBiWeekly, start, 2)
	if biweekly[1] != start.AddDate(0, 0, 14) {
		t.Fatalf("expected +14 days, got %s", biweekly[1].Format(time.RFC3339))
	}

	quarterly := NextDates(domain.FrequencyQuarterly, start, 2)
	if quarterly[1] != mustParse(t, "2024-06-15T09:30:00Z") {
		t.Fatalf("expected +3 months, got %s", quarterly[1].Format(time.RFC3339))
	}
}

func TestNextDatesMonthlyRollsOverMonthEnd(t *testing.T) {
	// Jan 31 + 1 calendar month lands in March via standard rollover (no Feb 31).
	start := mustParse(t, "2024-01-31T00:00:00Z")

	got := NextDates(domain.FrequencyMonthly, start, 2)

	if got[1] != mustParse(t, "2024-03-02T00:00:00Z") {
		t.Fatalf("expected calendar rollover to 2024-03-02, got %s", got[1].Format(time.RFC3339))
	}
}

func TestNextDatesMonthlyPreservesDayOfMonth(t *testing.T) {
	start := mustParse(t, "2024-01-15T00:00:00Z")

	got := NextDates(domain.FrequencyMonthly, start, 4)

	for i, ts := range got {
		if ts.Day() != 15 {
			t.Fatalf("position %d: expected day 15, got %d", i, ts.Day())
		}
	}
}

func TestNextDatesUnknownFrequencyRepeatsStart(t *testing.T) {
	start := mustParse(t, "2024-01-01T00:00:00Z")

	got := NextDates(domain.ScheduleFrequency("fortnightly-ish"), start, 3)

	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, ts := range got {
		if ts != start {
			t.Fatalf("position %d: expected start date repeated, got %s", i, ts.Format(time.RFC3339))
		}
	}
}

func TestNextDatesStrictlyIncreasingForKnownFrequencies(t *testing.T) {
	start := mustParse(t, "2024-05-01T00:00:00Z")

	for _, freq := range domain.KnownFrequencies {
		dates := NextDates(freq, start, 6)
		if dates[0] != start {
			t.Fatalf("%s: first element must equal start", freq)
		}
		for i := 1; i < len(dates); i++ {
			if !dates[i].After(dates[i-1]) {
				t.Fatalf("%s: dates not strictly increasing at %d", freq, i)
			}
		}
	}
}

func TestNextDatesCountZero(t *testing.T) {
	if got := NextDates(domain.FrequencyWeekly, time.Now(), 0); got != nil {
		t.Fatalf("expected nil for count 0, got %v", got)
	}
}
