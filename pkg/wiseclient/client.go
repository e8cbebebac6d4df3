/**
 * @description
 * This package provides a client for the Wise sandbox API, the external payment
 * provider behind real transfers. It encapsulates the authenticated HTTP calls for
 * the quote -> recipient -> transfer -> funding sequence plus status retrieval, with
 * typed request/response envelopes and a structured error body.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package wiseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client is a client for the Wise API. ProfileID identifies the operator profile that
// owns quotes, transfers, and the funding balance.
type Client struct {
	BaseURL    string
	APIToken   string
	ProfileID  string
	HTTPClient *http.Client
}

// NewClient creates a new Wise API client with a bounded request timeout.
func NewClient(baseURL, apiToken, profileID string) *Client {
	return &Client{
		BaseURL:   baseURL,
		APIToken:  apiToken,
		ProfileID: profileID,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Quote is the response of quote creation.
type Quote struct {
	ID             string  `json:"id"`
	SourceCurrency string  `json:"sourceCurrency"`
	TargetCurrency string  `json:"targetCurrency"`
	SourceAmount   float64 `json:"sourceAmount"`
	TargetAmount   float64 `json:"targetAmount"`
	Rate           float64 `json:"rate"`
}

// RecipientAccount is the response of recipient creation.
type RecipientAccount struct {
	ID                int64  `json:"id"`
	AccountHolderName string `json:"accountHolderName"`
	Currency          string `json:"currency"`
	Type              string `json:"type"`
}

// Transfer is the response of transfer creation and status retrieval.
type Transfer struct {
	ID            int64   `json:"id"`
	TargetAccount int64   `json:"targetAccount"`
	QuoteUUID     string  `json:"quoteUuid"`
	Status        string  `json:"status"`
	Reference     string  `json:"reference"`
	SourceValue   float64 `json:"sourceValue"`
}

// FundingResult is the response of the balance funding call.
type FundingResult struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// ErrorResponse represents an error body from the Wise API.
type ErrorResponse struct {
	StatusCode int `json:"-"`
	Errors     []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Path    string `json:"path,omitempty"`
	} `json:"errors"`
}

func (e *ErrorResponse) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("wise api error (status %d): %s - %s", e.StatusCode, e.Errors[0].Code, e.Errors[0].Message)
	}
	return fmt.Sprintf("wise api error (status %d)", e.StatusCode)
}

// IsPermissionError reports whether a provider error is an authorization refusal,
// e.g. the operator's token lacks the scope to debit the balance during funding.
func IsPermissionError(err error) bool {
	var apiErr *ErrorResponse
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

type quoteRequest struct {
	SourceCurrency string  `json:"sourceCurrency"`
	TargetCurrency string  `json:"targetCurrency"`
	SourceAmount   float64 `json:"sourceAmount"`
	PayOut         string  `json:"payOut"`
}

type recipientRequest struct {
	Currency          string                 `json:"currency"`
	Type              string                 `json:"type"`
	Profile           string                 `json:"profile"`
	AccountHolderName string                 `json:"accountHolderName"`
	Details           map[string]interface{} `json:"details"`
}

type transferRequest struct {
	TargetAccount         int64  `json:"targetAccount"`
	QuoteUUID             string `json:"quoteUuid"`
	CustomerTransactionID string `json:"customerTransactionId"`
	Details               struct {
		Reference string `json:"reference"`
	} `json:"details"`
}

type fundingRequest struct {
	Type string `json:"type"`
}

// CreateQuote requests a quote for a source-to-target currency conversion.
func (c *Client) CreateQuote(ctx context.Context, sourceCurrency, targetCurrency string, sourceAmount float64) (*Quote, error) {
	payload := quoteRequest{
		SourceCurrency: sourceCurrency,
		TargetCurrency: targetCurrency,
		SourceAmount:   sourceAmount,
		PayOut:         "BANK_TRANSFER",
	}

	var quote Quote
	url := fmt.Sprintf("%s/v3/profiles/%s/quotes", c.BaseURL, c.ProfileID)
	if err := c.do(ctx, http.MethodPost, url, payload, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateRecipient creates a recipient account on the provider using the schema
// selected by the recipient field mapper.
func (c *Client) CreateRecipient(ctx context.Context, currency, holderName, recipientType string, details map[string]interface{}) (*RecipientAccount, error) {
	payload := recipientRequest{
		Currency:          currency,
		Type:              recipientType,
		Profile:           c.ProfileID,
		AccountHolderName: holderName,
		Details:           details,
	}

	var account RecipientAccount
	if err := c.do(ctx, http.MethodPost, c.BaseURL+"/v1/accounts", payload, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateTransfer submits a transfer referencing a quote and recipient. The
// customerTransactionID is an idempotency key: retried submissions with the same key
// are not duplicated by the provider.
func (c *Client) CreateTransfer(ctx context.Context, targetAccountID int64, quoteID, customerTransactionID, reference string) (*Transfer, error) {
	payload := transferRequest{
		TargetAccount:         targetAccountID,
		QuoteUUID:             quoteID,
		CustomerTransactionID: customerTransactionID,
	}
	payload.Details.Reference = reference

	var transfer Transfer
	if err := c.do(ctx, http.MethodPost, c.BaseURL+"/v1/transfers", payload, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// FundTransfer attempts to fund a transfer from the operator's balance.
func (c *Client) FundTransfer(ctx context.Context, transferID int64) (*FundingResult, error) {
	url := fmt.Sprintf("%s/v3/profiles/%s/transfers/%d/payments", c.BaseURL, c.ProfileID, transferID)

	var result FundingResult
	if err := c.do(ctx, http.MethodPost, url, fundingRequest{Type: "BALANCE"}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTransfer retrieves the current provider-side state of a transfer.
func (c *Client) GetTransfer(ctx context.Context, transferID int64) (*Transfer, error) {
	url := fmt.Sprintf("%s/v1/transfers/%d", c.BaseURL, transferID)

	var transfer Transfer
	if err := c.do(ctx, http.MethodGet, url, nil, &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// ListTransfers retrieves the operator's recent transfers.
func (c *Client) ListTransfers(ctx context.Context, limit int) ([]Transfer, error) {
	url := fmt.Sprintf("%s/v1/transfers?profile=%s&limit=%d", c.BaseURL, c.ProfileID, limit)

	var transfers []Transfer
	if err := c.do(ctx, http.MethodGet, url, nil, &transfers); err != nil {
		return nil, err
	}
	return transfers, nil
}

// do executes one authenticated request and decodes the response into out. Non-2xx
// responses decode into an ErrorResponse carrying the HTTP status.
func (c *Client) do(ctx context.Context, method, url string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errResp := &ErrorResponse{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, errResp); err != nil {
			log.Printf("level=warn component=wise_client method=%s url=%s status=%d msg=\"non-2xx response (unparsable error body)\"", method, url, resp.StatusCode)
			return errResp
		}
		log.Printf("level=warn component=wise_client method=%s status=%d code=%q msg=%q", method, resp.StatusCode, firstErrorCode(errResp), firstErrorMessage(errResp))
		return errResp
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func firstErrorCode(resp *ErrorResponse) string {
	if len(resp.Errors) == 0 {
		return ""
	}
	return resp.Errors[0].Code
}

func firstErrorMessage(resp *ErrorResponse) string {
	if len(resp.Errors) == 0 {
		return ""
	}
	return resp.Errors[0].Message
}
