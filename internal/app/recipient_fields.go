/**
 * @description
 * Maps a destination currency to the provider-specific recipient schema: the account
 * identifier type Wise expects plus its required detail fields. Schemas live in a
 * registry keyed by currency code so new destinations are added without touching the
 * orchestrator.
 *
 * Caller-supplied details always win. Sandbox-safe placeholder values are substituted
 * only when a detail is absent and the service is not running against production.
 * Currencies without a specific schema fall through to a generic one that the
 * provider will likely reject; surfacing the provider's real error there is
 * preferable to failing earlier with a vaguer one.
 */

package app

import "strings"

// ProviderRecipientFields is the mapped schema for one recipient creation call.
type ProviderRecipientFields struct {
	Type    string
	Details map[string]interface{}
}

type schemaFunc func(raw map[string]string, sandbox bool) ProviderRecipientFields

// RecipientFieldMapper selects recipient schemas per destination currency.
type RecipientFieldMapper struct {
	schemas map[string]schemaFunc
	sandbox bool
}

// NewRecipientFieldMapper builds the schema registry. sandbox enables placeholder
// substitution for absent details.
func NewRecipientFieldMapper(sandbox bool) *RecipientFieldMapper {
	return &RecipientFieldMapper{
		sandbox: sandbox,
		schemas: map[string]schemaFunc{
			"MXN": mxnSchema,
			"INR": inrSchema,
			"PHP": phpSchema,
			"GBP": gbpSchema,
			"EUR": eurSchema,
			"USD": usdSchema,
		},
	}
}

// Map returns the provider recipient type and detail fields for a currency.
func (m *RecipientFieldMapper) Map(currencyCode string, raw map[string]string) ProviderRecipientFields {
	schema, ok := m.schemas[strings.ToUpper(currencyCode)]
	if !ok {
		schema = genericSchema
	}
	fields := schema(raw, m.sandbox)
	fields.Details["legalType"] = "PRIVATE"
	return fields
}

// detail reads a caller-supplied value, falling back to the sandbox placeholder only
// outside production.
func detail(raw map[string]string, key, placeholder string, sandbox bool) string {
	if v, ok := raw[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if sandbox {
		return placeholder
	}
	return ""
}

func mxnSchema(raw map[string]string, sandbox bool) ProviderRecipientFields {
	return ProviderRecipientFields{
		Type: "mexican",
		Details: map[string]interface{}{
			"clabe": detail(raw, "clabe", "032180000118359719", sandbox),
		},
	}
}

func inrSchema(raw map[string]string, sandbox bool) ProviderRecipientFields {
	return ProviderRecipientFields{
		Type: "indian",
		Details: map[string]interface{}{
			"accountNumber": detail(raw, "account_number", "1234567890", sandbox),
			"ifscCode":      detail(raw, "ifsc_code", "SBIN0000001", sandbox),
		},
	}
}

func phpSchema(raw map[string]string, sandbox bool) ProviderRecipientFields {
	return ProviderRecipientFields{
		Type: "philippines",
		Details: map[string]interface{}{
			"accountNumber": detail(raw, "account_number", "9876543210", sandbox),
			"bankCode":      detail(raw, "bank_code", "010040018", sandbox),
		},
	}
}

func gbpSchema(raw map[string]string, sandbox bool) ProviderRecipientFields {
	return ProviderRecipientFields{
		Type: "sort_code",
		Details: map[string]interface{}{
			"sortCode":      detail(raw, "sort_code", "231470", sandbox),
			"accountNumber": detail(raw, "account_number", "28821822", sandbox),
		},
	}
}

func eurSchema(raw map[string]string, sandbox bool) ProviderRecipientFields {
	return ProviderRecipientFields{
		Type: "iban",
		Details: map[string]interface{}{
			"IBAN": detail(raw, "iban", "DE89370400440532013000", sandbox),
		},
	}
}

func usdSchema(raw map[string]string, sandbox bool) ProviderRecipientFields {
	return ProviderRecipientFields{
		Type: "aba",
		Details: map[string]interface{}{
			"abartn":        detail(raw, "routing_number", "111000025", sandbox),
			"accountNumber": detail(raw, "account_number", "12345678", sandbox),
			"accountType":   "CHECKING",
			"address": map[string]interface{}{
				"country":   "US",
				"city":      detail(raw, "city", "Austin", sandbox),
				"state":     detail(raw, "state", "TX", sandbox),
				"postCode":  detail(raw, "post_code", "78701", sandbox),
				"firstLine": detail(raw, "address", "100 Congress Ave", sandbox),
			},
		},
	}
}

// genericSchema is the best-effort fallback for currencies without a specific
// mapping. The provider is expected to reject it with its own validation error.
func genericSchema(raw map[string]string, sandbox bool) ProviderRecipientFields {
	return ProviderRecipientFields{
		Type: "bank_account",
		Details: map[string]interface{}{
			"accountNumber": detail(raw, "account_number", "0000000000", sandbox),
		},
	}
}
