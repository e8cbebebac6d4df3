package app

import "testing"

func TestMapMXNUsesClabeSchema(t *testing.T) {
	mapper := NewRecipientFieldMapper(true)

	fields := mapper.Map("MXN", nil)

	if fields.Type != "mexican" {
		t.Fatalf("expected mexican schema, got %s", fields.Type)
	}
	if fields.Details["clabe"] == "" {
		t.Fatal("expected sandbox placeholder clabe")
	}
	if fields.Details["legalType"] != "PRIVATE" {
		t.Fatal("expected legalType PRIVATE on every schema")
	}
}

func TestMapPrefersCallerSuppliedDetails(t *testing.T) {
	mapper := NewRecipientFieldMapper(true)

	fields := mapper.Map("INR", map[string]string{
		"account_number": "000111222333",
		"ifsc_code":      "HDFC0001234",
	})

	if fields.Details["accountNumber"] != "000111222333" {
		t.Fatalf("expected caller account number, got %v", fields.Details["accountNumber"])
	}
	if fields.Details["ifscCode"] != "HDFC0001234" {
		t.Fatalf("expected caller ifsc, got %v", fields.Details["ifscCode"])
	}
}

func TestMapProductionModeNeverSubstitutesPlaceholders(t *testing.T) {
	mapper := NewRecipientFieldMapper(false)

	fields := mapper.Map("GBP", nil)

	if fields.Details["sortCode"] != "" || fields.Details["accountNumber"] != "" {
		t.Fatalf("expected empty details in production mode, got %v", fields.Details)
	}
}

func TestMapUnknownCurrencyFallsThroughToGenericSchema(t *testing.T) {
	mapper := NewRecipientFieldMapper(true)

	fields := mapper.Map("VND", nil)

	if fields.Type != "bank_account" {
		t.Fatalf("expected generic schema, got %s", fields.Type)
	}
}

func TestMapIsCaseInsensitiveOnCurrency(t *testing.T) {
	mapper := NewRecipientFieldMapper(true)

	if fields := mapper.Map("eur", nil); fields.Type != "iban" {
		t.Fatalf("expected iban schema for lowercase eur, got %s", fields.Type)
	}
}
