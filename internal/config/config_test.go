package config

import (
	"testing"

	"github.com/spf13/viper"
)

func loadForTest(t *testing.T, env map[string]string) Config {
	t.Helper()
	viper.Reset()
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadForTest(t, nil)

	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.RateBaseCurrency != "USD" {
		t.Fatalf("expected USD base, got %s", cfg.RateBaseCurrency)
	}
	if cfg.FeePercent != 1.5 || cfg.MinFee != 2.99 || cfg.MaxFee != 24.99 {
		t.Fatalf("unexpected fee defaults: %f %f %f", cfg.FeePercent, cfg.MinFee, cfg.MaxFee)
	}
	if cfg.UseRealTransfers {
		t.Fatal("real transfers must default to off")
	}
	if cfg.IsProduction() {
		t.Fatal("default environment must not be production")
	}
}

func TestLoadConfigCoercesInvalidFees(t *testing.T) {
	cfg := loadForTest(t, map[string]string{
		"FEE_PERCENT": "-2",
		"MIN_FEE":     "10",
		"MAX_FEE":     "5",
	})

	if cfg.FeePercent != 0 {
		t.Fatalf("expected negative fee percent coerced to 0, got %f", cfg.FeePercent)
	}
	if cfg.MaxFee != cfg.MinFee {
		t.Fatalf("expected max fee raised to min, got min=%f max=%f", cfg.MinFee, cfg.MaxFee)
	}
}

func TestLoadConfigForcesSimulatedModeWithoutCredentials(t *testing.T) {
	cfg := loadForTest(t, map[string]string{
		"USE_REAL_TRANSFERS": "true",
	})

	if cfg.UseRealTransfers {
		t.Fatal("expected real transfers forced off without provider credentials")
	}
}

func TestLoadConfigKeepsRealModeWithCredentials(t *testing.T) {
	cfg := loadForTest(t, map[string]string{
		"USE_REAL_TRANSFERS": "true",
		"WISE_API_TOKEN":     "token",
		"WISE_PROFILE_ID":    "12345",
	})

	if !cfg.UseRealTransfers {
		t.Fatal("expected real transfers to stay enabled with credentials")
	}
}
