package domain

import "time"

// RateSnapshot is one fetch of the exchange-rate table relative to a base currency.
// Snapshots are immutable once published; the rate provider swaps whole snapshots so
// no reader ever observes a partially written table.
type RateSnapshot struct {
	BaseCurrency string             `json:"base_currency"`
	Rates        map[string]float64 `json:"rates"`
	// FetchedAt is stamped with the local clock when the table was retrieved; it
	// drives cache freshness. SourceAsOf is the rate source's own publication
	// timestamp, which open rate feeds refresh only daily, so it can trail
	// FetchedAt by many hours. Display only.
	FetchedAt  time.Time `json:"fetched_at"`
	SourceAsOf time.Time `json:"source_as_of"`
}

// Age returns how long ago the snapshot was fetched.
func (s RateSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
