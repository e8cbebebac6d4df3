package domain

import "time"

// Recipient is a saved payout destination. It is created only by the explicit
// save-recipient operation, never implicitly from a transfer. TotalSent and
// TransferCount are mutated only when a saved recipient is reused for a new transfer.
// Deletion is terminal; there is no soft-delete.
type Recipient struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Country       string    `json:"country"`
	CurrencyCode  string    `json:"currency_code"`
	TotalSent     float64   `json:"total_sent"`
	TransferCount int       `json:"transfer_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// SaveRecipientRequest is the DTO for the save-recipient operation.
type SaveRecipientRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}
