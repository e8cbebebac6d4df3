/**
 * @description
 * Time-cached exchange-rate provider. Serves the cached snapshot while it is younger
 * than the TTL, refreshes it when stale, and degrades gracefully: a failed refresh
 * falls back to the stale snapshot, and when no snapshot exists at all a built-in
 * table covering the reference corridor currencies is served. Rate unavailability is
 * only an error when a specific requested currency is absent from the resulting table.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/remitflow/remit-service/internal/domain"
)

// RateFetcher fetches the latest rate table relative to a base currency.
type RateFetcher interface {
	FetchLatest(ctx context.Context, base string) (map[string]float64, time.Time, error)
}

// fallbackRates covers the reference corridor currencies when neither a cached nor a
// fresh snapshot is available. Values are indicative only.
var fallbackRates = map[string]float64{
	"MXN": 17.2,
	"GTQ": 7.8,
	"COP": 3950.0,
	"BRL": 4.95,
	"INR": 83.1,
	"PHP": 55.9,
	"VND": 24500.0,
	"CNY": 7.24,
	"NGN": 1550.0,
	"KES": 129.0,
	"GHS": 15.6,
	"GBP": 0.79,
	"EUR": 0.92,
	"USD": 1.0,
}

// RateProvider caches one rate snapshot behind an RWMutex. Concurrent callers may
// trigger overlapping refreshes; whole snapshots are swapped so no reader ever
// observes a partially written table, and the last writer wins.
type RateProvider struct {
	fetcher RateFetcher
	base    string
	ttl     time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	snapshot *domain.RateSnapshot
}

// NewRateProvider creates a provider for the given base currency and cache TTL.
func NewRateProvider(fetcher RateFetcher, base string, ttl time.Duration) *RateProvider {
	return &RateProvider{
		fetcher: fetcher,
		base:    base,
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetRates returns the current snapshot. While the cache is fresh no network call is
// made. A failed refresh is never an error to the caller: the stale cache or the
// built-in fallback table is returned instead.
func (p *RateProvider) GetRates(ctx context.Context) domain.RateSnapshot {
	p.mu.RLock()
	cached := p.snapshot
	p.mu.RUnlock()

	now := p.now()
	if cached != nil && cached.Age(now) < p.ttl {
		return *cached
	}

	rates, asOf, err := p.fetcher.FetchLatest(ctx, p.base)
	if err != nil {
		if cached != nil {
			log.Printf("level=warn component=rate_provider msg=\"refresh failed; serving stale snapshot\" age=%s err=%v", cached.Age(now), err)
			return *cached
		}
		log.Printf("level=warn component=rate_provider msg=\"refresh failed with empty cache; serving built-in fallback table\" err=%v", err)
		return domain.RateSnapshot{
			BaseCurrency: p.base,
			Rates:        fallbackRates,
			FetchedAt:    now,
		}
	}

	// Freshness is judged from the local fetch time, not the source's published
	// timestamp: open rate feeds refresh daily, so their as-of can already be
	// hours old the moment it arrives.
	fresh := &domain.RateSnapshot{
		BaseCurrency: p.base,
		Rates:        rates,
		FetchedAt:    now,
		SourceAsOf:   asOf,
	}

	p.mu.Lock()
	p.snapshot = fresh
	p.mu.Unlock()

	return *fresh
}

// RateFor returns the exchange rate from the base currency to the requested
// currency. A missing currency is the provider-unavailable condition.
func (p *RateProvider) RateFor(ctx context.Context, currency string) (float64, error) {
	snapshot := p.GetRates(ctx)
	rate, ok := snapshot.Rates[currency]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrRateUnavailable, currency)
	}
	return rate, nil
}
