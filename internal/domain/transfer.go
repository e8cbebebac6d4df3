/**
 * @description
 * This file defines the core domain models for the remit-service. These structs
 * represent the main entities and data transfer objects (DTOs) used throughout the
 * service's orchestration logic, persistence, and API layers.
 *
 * @notes
 * - Amounts are `float64` because target amounts are derived from floating-point
 *   exchange rates; invariants are checked within a small tolerance.
 * - Recipient name and country are copied onto the Transfer at creation time and are
 *   never kept in sync with the saved recipient afterwards (snapshot semantics).
 */

package domain

import "time"

// TransferStatus is the lifecycle state of a transfer after creation.
type TransferStatus string

const (
	StatusPending         TransferStatus = "pending"
	StatusProcessing      TransferStatus = "processing"
	StatusCompleted       TransferStatus = "completed"
	StatusAwaitingFunding TransferStatus = "awaiting_funding"
)

// statusOrder indexes the settlement progression. awaiting_funding sits outside the
// progression: it only resolves once the operator funds the transfer at the provider.
var statusOrder = map[TransferStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusCompleted:  2,
}

// IsFinal reports whether no further status progression is possible.
func (s TransferStatus) IsFinal() bool {
	return s == StatusCompleted
}

// Next returns the next status in the settlement progression and whether one exists.
// awaiting_funding and completed never advance through this path.
func (s TransferStatus) Next() (TransferStatus, bool) {
	switch s {
	case StatusPending:
		return StatusProcessing, true
	case StatusProcessing:
		return StatusCompleted, true
	default:
		return s, false
	}
}

// Index returns the position of a status within the settlement progression, or -1 for
// statuses outside it. Repeated status checks must yield a non-decreasing index.
func (s TransferStatus) Index() int {
	idx, ok := statusOrder[s]
	if !ok {
		return -1
	}
	return idx
}

// Transfer is the central record for one money movement. It is created exactly once by
// the orchestrator at submission time, appended to the store, and never deleted.
type Transfer struct {
	ID                 string         `json:"id"`
	ProviderTransferID *string        `json:"provider_transfer_id,omitempty"`
	SourceCurrency     string         `json:"source_currency"`
	TargetCurrency     string         `json:"target_currency"`
	SourceAmount       float64        `json:"source_amount"`
	FeeAmount          float64        `json:"fee_amount"`
	NetAmount          float64        `json:"net_amount"`
	ExchangeRate       float64        `json:"exchange_rate"`
	TargetAmount       float64        `json:"target_amount"`
	RecipientName      string         `json:"recipient_name"`
	RecipientCountry   string         `json:"recipient_country"`
	DeliveryTimeLabel  string         `json:"delivery_time_label"`
	Status             TransferStatus `json:"status"`
	EstimatedArrival   time.Time      `json:"estimated_arrival"`
	CreatedAt          time.Time      `json:"created_at"`
	IsRealTransfer     bool           `json:"is_real_transfer"`
	FallbackNote       *string        `json:"fallback_note,omitempty"`
}

// FeeBreakdown is display-only metadata returned alongside a submitted transfer or a
// quote. It is not persisted.
type FeeBreakdown struct {
	BaseAmount   float64 `json:"base_amount"`
	FeePercent   float64 `json:"fee_percent"`
	FeeAmount    float64 `json:"fee_amount"`
	NetAmount    float64 `json:"net_amount"`
	ExchangeRate float64 `json:"exchange_rate"`
	TargetAmount float64 `json:"target_amount"`
}

// SubmitTransferRequest is the DTO for the send operation.
type SubmitTransferRequest struct {
	Amount             float64           `json:"amount"`
	DestinationCountry string            `json:"destination_country"`
	RecipientName      string            `json:"recipient_name"`
	// RecipientDetails carries optional destination-specific fields (account number,
	// clearing codes) forwarded to the provider's recipient schema.
	RecipientDetails map[string]string `json:"recipient_details,omitempty"`
}

// TransferQuote is the response payload of the quote operation. Nothing is persisted.
type TransferQuote struct {
	DestinationCountry string       `json:"destination_country"`
	TargetCurrency     string       `json:"target_currency"`
	DeliveryTimeLabel  string       `json:"delivery_time_label"`
	Breakdown          FeeBreakdown `json:"breakdown"`
	QuotedAt           time.Time    `json:"quoted_at"`
}

// RateComparison is one row of the compare-rates operation.
type RateComparison struct {
	Country           string  `json:"country"`
	CurrencyCode      string  `json:"currency_code"`
	ExchangeRate      float64 `json:"exchange_rate"`
	TargetAmount      float64 `json:"target_amount"`
	DeliveryTimeLabel string  `json:"delivery_time_label"`
}

// TransferAnalytics aggregates the transfer history for the analytics operation.
type TransferAnalytics struct {
	TransferCount    int                `json:"transfer_count"`
	TotalSent        float64            `json:"total_sent"`
	TotalFees        float64            `json:"total_fees"`
	AverageAmount    float64            `json:"average_amount"`
	CountsByCountry  map[string]int     `json:"counts_by_country"`
	AmountsByCountry map[string]float64 `json:"amounts_by_country"`
	TopRecipient     string             `json:"top_recipient,omitempty"`
	CompletedCount   int                `json:"completed_count"`
}
