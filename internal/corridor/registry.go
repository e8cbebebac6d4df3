/**
 * @description
 * This package holds the static table of supported remittance corridors: destination
 * country, payout currency, delivery-time estimate, and region. The registry is a pure
 * lookup with no mutable state; "unsupported corridor" is a normal not-found outcome,
 * not a fault.
 */

package corridor

import "strings"

// Corridor describes one supported destination.
type Corridor struct {
	Country           string `json:"country"`
	CurrencyCode      string `json:"currency_code"`
	DeliveryTimeLabel string `json:"delivery_time_label"`
	Region            string `json:"region"`
}

// Region identifiers used by the list-countries operation.
const (
	RegionLatinAmerica = "latin_america"
	RegionAsia         = "asia"
	RegionAfrica       = "africa"
	RegionEurope       = "europe"
)

// corridors is the process-wide constant corridor table. Order is the display order of
// the list-countries operation.
var corridors = []Corridor{
	{Country: "Mexico", CurrencyCode: "MXN", DeliveryTimeLabel: "Minutes", Region: RegionLatinAmerica},
	{Country: "Guatemala", CurrencyCode: "GTQ", DeliveryTimeLabel: "1-2 days", Region: RegionLatinAmerica},
	{Country: "Colombia", CurrencyCode: "COP", DeliveryTimeLabel: "Minutes", Region: RegionLatinAmerica},
	{Country: "Brazil", CurrencyCode: "BRL", DeliveryTimeLabel: "1 day", Region: RegionLatinAmerica},
	{Country: "India", CurrencyCode: "INR", DeliveryTimeLabel: "Minutes", Region: RegionAsia},
	{Country: "Philippines", CurrencyCode: "PHP", DeliveryTimeLabel: "Minutes", Region: RegionAsia},
	{Country: "Vietnam", CurrencyCode: "VND", DeliveryTimeLabel: "1-2 days", Region: RegionAsia},
	{Country: "China", CurrencyCode: "CNY", DeliveryTimeLabel: "1-2 days", Region: RegionAsia},
	{Country: "Nigeria", CurrencyCode: "NGN", DeliveryTimeLabel: "1 day", Region: RegionAfrica},
	{Country: "Kenya", CurrencyCode: "KES", DeliveryTimeLabel: "Minutes", Region: RegionAfrica},
	{Country: "Ghana", CurrencyCode: "GHS", DeliveryTimeLabel: "1 day", Region: RegionAfrica},
	{Country: "United Kingdom", CurrencyCode: "GBP", DeliveryTimeLabel: "Minutes", Region: RegionEurope},
	{Country: "Germany", CurrencyCode: "EUR", DeliveryTimeLabel: "1 day", Region: RegionEurope},
	{Country: "Spain", CurrencyCode: "EUR", DeliveryTimeLabel: "1 day", Region: RegionEurope},
}

// Registry exposes corridor lookups. It carries no state beyond the static table and
// is safe for concurrent use.
type Registry struct{}

// NewRegistry returns the corridor registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// FindByCountry looks up a corridor by destination country, case-insensitively.
// The second return value reports whether the corridor is supported.
func (r *Registry) FindByCountry(name string) (Corridor, bool) {
	needle := strings.TrimSpace(name)
	for _, c := range corridors {
		if strings.EqualFold(c.Country, needle) {
			return c, true
		}
	}
	return Corridor{}, false
}

// ListAll returns every supported corridor in display order.
func (r *Registry) ListAll() []Corridor {
	out := make([]Corridor, len(corridors))
	copy(out, corridors)
	return out
}

// ListByRegion returns the corridors of one region in display order. An unknown
// region yields an empty slice.
func (r *Registry) ListByRegion(region string) []Corridor {
	var out []Corridor
	for _, c := range corridors {
		if strings.EqualFold(c.Region, region) {
			out = append(out, c)
		}
	}
	return out
}

// Countries returns the supported country names in display order. Used by rejection
// messages for unsupported destinations.
func (r *Registry) Countries() []string {
	out := make([]string, 0, len(corridors))
	for _, c := range corridors {
		out = append(out, c.Country)
	}
	return out
}

// Currencies returns the distinct payout currencies across all corridors.
func (r *Registry) Currencies() []string {
	seen := make(map[string]bool, len(corridors))
	var out []string
	for _, c := range corridors {
		if !seen[c.CurrencyCode] {
			seen[c.CurrencyCode] = true
			out = append(out, c.CurrencyCode)
		}
	}
	return out
}
