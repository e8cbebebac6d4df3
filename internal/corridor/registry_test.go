package corridor

import "testing"

func TestFindByCountryIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"Mexico", "mexico", "MEXICO", "  mexico  "} {
		c, ok := r.FindByCountry(name)
		if !ok {
			t.Fatalf("expected corridor for %q", name)
		}
		if c.CurrencyCode != "MXN" {
			t.Fatalf("expected MXN for %q, got %s", name, c.CurrencyCode)
		}
	}
}

func TestFindByCountryUnsupportedIsNotFound(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.FindByCountry("Atlantis"); ok {
		t.Fatal("expected not-found for unsupported country")
	}
}

func TestListByRegionPreservesOrder(t *testing.T) {
	r := NewRegistry()

	latam := r.ListByRegion(RegionLatinAmerica)
	if len(latam) == 0 {
		t.Fatal("expected latin america corridors")
	}
	if latam[0].Country != "Mexico" {
		t.Fatalf("expected Mexico first, got %s", latam[0].Country)
	}
	for _, c := range latam {
		if c.Region != RegionLatinAmerica {
			t.Fatalf("unexpected region %s for %s", c.Region, c.Country)
		}
	}
}

func TestCurrenciesAreDistinct(t *testing.T) {
	r := NewRegistry()

	seen := make(map[string]bool)
	for _, code := range r.Currencies() {
		if seen[code] {
			t.Fatalf("duplicate currency %s", code)
		}
		seen[code] = true
	}
	// Germany and Spain share EUR, so currencies must be fewer than corridors.
	if len(r.Currencies()) >= len(r.ListAll()) {
		t.Fatal("expected shared currencies to be deduplicated")
	}
}
