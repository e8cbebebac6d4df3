package app

import (
	"time"

	"github.com/remitflow/remit-service/internal/domain"
)

// NextDates produces exactly count execution timestamps for a recurring schedule,
// starting at startDate. Weekly advances 7 days, biweekly 14, monthly one calendar
// month (day-of-month preserved where possible, with standard rollover at month end),
// quarterly three calendar months.
//
// An unknown frequency repeats startDate for every entry: the step function never
// advances. Schedule creation validates frequencies against domain.KnownFrequencies,
// so this branch is only reachable for records written before validation existed.
func NextDates(frequency domain.ScheduleFrequency, startDate time.Time, count int) []time.Time {
	if count <= 0 {
		return nil
	}

	dates := make([]time.Time, 0, count)
	current := startDate
	for i := 0; i < count; i++ {
		dates = append(dates, current)
		current = AdvanceDate(frequency, current)
	}
	return dates
}

// AdvanceDate returns the next execution time after current for the given frequency.
// Unknown frequencies return current unchanged.
func AdvanceDate(frequency domain.ScheduleFrequency, current time.Time) time.Time {
	switch frequency {
	case domain.FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case domain.FrequencyBiWeekly:
		return current.AddDate(0, 0, 14)
	case domain.FrequencyMonthly:
		return current.AddDate(0, 1, 0)
	case domain.FrequencyQuarterly:
		return current.AddDate(0, 3, 0)
	default:
		return current
	}
}

// IsKnownFrequency reports whether the date generator advances for frequency.
func IsKnownFrequency(frequency domain.ScheduleFrequency) bool {
	for _, f := range domain.KnownFrequencies {
		if f == frequency {
			return true
		}
	}
	return false
}
