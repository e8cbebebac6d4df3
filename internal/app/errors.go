package app

import (
	"errors"
	"fmt"
	"strings"
)

// Validation and dependency errors surfaced by the orchestrator. Every failure path
// returns one of these as a structured rejection; none is fatal to the process.
var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrAmountExceedsLimit = errors.New("amount exceeds the per-transaction limit")
	ErrRateUnavailable    = errors.New("exchange rate unavailable for currency")
	ErrMissingRecipient   = errors.New("recipient name is required")
	ErrMissingCountry     = errors.New("destination country is required")
	ErrUnknownFrequency   = errors.New("unknown schedule frequency")
	ErrNoMatchingTransfer = errors.New("no matching transfer to repeat; use the history operation to review past transfers")
)

// UnsupportedCorridorError rejects a destination outside the corridor table. The
// rejection payload enumerates the supported countries so the caller can present
// alternatives.
type UnsupportedCorridorError struct {
	Country   string
	Supported []string
}

func (e *UnsupportedCorridorError) Error() string {
	return fmt.Sprintf("transfers to %q are not supported; supported destinations: %s",
		e.Country, strings.Join(e.Supported, ", "))
}
