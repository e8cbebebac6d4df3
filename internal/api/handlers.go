/**
 * @description
 * This file contains the HTTP handlers for the remit-service's API endpoints.
 * Handlers parse incoming requests, call the orchestration service, and write the
 * response envelope the conversational agent gateway consumes: a human-readable
 * summary, the structured data, and the widget the client should render.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: For URL parameter extraction.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/remitflow/remit-service/internal/app"
	"github.com/remitflow/remit-service/internal/domain"
	"github.com/remitflow/remit-service/internal/store"
)

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service *app.Service

	limiter        *app.RedisSubmitRateLimiter
	limitPerMinute int
}

// NewHandlers creates a new Handlers instance. limiter may be nil when Redis is not
// configured; limitPerMinute of zero disables limiting.
func NewHandlers(service *app.Service, limiter *app.RedisSubmitRateLimiter, limitPerMinute int) *Handlers {
	return &Handlers{service: service, limiter: limiter, limitPerMinute: limitPerMinute}
}

// toolResponse is the envelope every operation returns: a sentence for the agent to
// speak, the structured payload, and the widget hint for the client UI.
type toolResponse struct {
	Summary string      `json:"summary"`
	Data    interface{} `json:"data"`
	Widget  string      `json:"widget"`
}

type submittedTransferData struct {
	Transfer  *domain.Transfer     `json:"transfer"`
	Breakdown *domain.FeeBreakdown `json:"breakdown"`
}

// SubmitTransferHandler handles requests to send money.
func (h *Handlers) SubmitTransferHandler(w http.ResponseWriter, r *http.Request) {
	if !h.consumeSubmitBudget(w, r) {
		return
	}

	var req domain.SubmitTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=submit_transfer outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	transfer, breakdown, err := h.service.SubmitTransfer(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, "submit_transfer", err)
		return
	}

	log.Printf("level=info component=api endpoint=submit_transfer outcome=accepted transfer_id=%s amount=%.2f country=%s", transfer.ID, transfer.SourceAmount, transfer.RecipientCountry)

	summary := fmt.Sprintf("Sent %.2f %s to %s in %s. %.2f %s on the way, expected delivery: %s.",
		transfer.SourceAmount, transfer.SourceCurrency, transfer.RecipientName, transfer.RecipientCountry,
		transfer.TargetAmount, transfer.TargetCurrency, transfer.DeliveryTimeLabel)
	if transfer.Status == domain.StatusAwaitingFunding {
		summary = fmt.Sprintf("Transfer to %s created at the provider and is awaiting funding.", transfer.RecipientName)
	}

	h.writeJSON(w, http.StatusCreated, toolResponse{
		Summary: summary,
		Data:    submittedTransferData{Transfer: transfer, Breakdown: breakdown},
		Widget:  "transfer_card",
	})
}

// HistoryHandler returns all transfers, most recent first.
func (h *Handlers) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.service.History(r.Context())
	if err != nil {
		h.handleServiceError(w, "history", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: fmt.Sprintf("You have %d transfers on record.", len(transfers)),
		Data:    transfers,
		Widget:  "history_list",
	})
}

// GetTransferHandler returns one transfer by id.
func (h *Handlers) GetTransferHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	transfer, err := h.service.GetTransfer(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, "get_transfer", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: fmt.Sprintf("Transfer %s to %s is %s.", transfer.ID, transfer.RecipientName, transfer.Status),
		Data:    transfer,
		Widget:  "transfer_card",
	})
}

// CheckStatusHandler probes a transfer's settlement progress.
func (h *Handlers) CheckStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	transfer, err := h.service.CheckStatus(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, "check_status", err)
		return
	}

	summary := fmt.Sprintf("Transfer %s to %s is %s.", transfer.ID, transfer.RecipientName, transfer.Status)
	if transfer.Status == domain.StatusCompleted {
		summary = fmt.Sprintf("Transfer %s to %s has been delivered.", transfer.ID, transfer.RecipientName)
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: summary,
		Data:    transfer,
		Widget:  "transfer_card",
	})
}

type repeatTransferRequest struct {
	RecipientName string `json:"recipient_name"`
}

// RepeatTransferHandler re-sends a previous transfer.
func (h *Handlers) RepeatTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req repeatTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=repeat_transfer outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	transfer, breakdown, err := h.service.RepeatTransfer(r.Context(), req.RecipientName)
	if err != nil {
		h.handleServiceError(w, "repeat_transfer", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toolResponse{
		Summary: fmt.Sprintf("Repeated your transfer to %s: %.2f %s sent, %.2f %s delivered.",
			transfer.RecipientName, transfer.SourceAmount, transfer.SourceCurrency, transfer.TargetAmount, transfer.TargetCurrency),
		Data:    submittedTransferData{Transfer: transfer, Breakdown: breakdown},
		Widget:  "transfer_card",
	})
}

type quoteRequest struct {
	Amount             float64 `json:"amount"`
	DestinationCountry string  `json:"destination_country"`
}

// QuoteHandler computes a fee/rate breakdown without persisting anything.
func (h *Handlers) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=quote outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	quote, err := h.service.QuoteTransfer(r.Context(), req.Amount, req.DestinationCountry)
	if err != nil {
		h.handleServiceError(w, "quote", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: fmt.Sprintf("Sending %.2f to %s costs a %.2f fee; the recipient gets %.2f %s (%s).",
			quote.Breakdown.BaseAmount, quote.DestinationCountry, quote.Breakdown.FeeAmount,
			quote.Breakdown.TargetAmount, quote.TargetCurrency, quote.DeliveryTimeLabel),
		Data:   quote,
		Widget: "quote_card",
	})
}

// ListCorridorsHandler lists supported destinations, optionally filtered by region.
func (h *Handlers) ListCorridorsHandler(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	var corridors interface{}
	var count int
	if region != "" {
		list := h.service.Corridors().ListByRegion(region)
		corridors, count = list, len(list)
	} else {
		list := h.service.Corridors().ListAll()
		corridors, count = list, len(list)
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: fmt.Sprintf("%d destinations are supported.", count),
		Data:    corridors,
		Widget:  "corridor_list",
	})
}

// CompareRatesHandler produces one conversion row per corridor for a given amount.
func (h *Handlers) CompareRatesHandler(w http.ResponseWriter, r *http.Request) {
	amount := 100.0
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "Invalid amount parameter", http.StatusBadRequest)
			return
		}
		amount = parsed
	}

	rows, err := h.service.CompareRates(r.Context(), amount)
	if err != nil {
		h.handleServiceError(w, "compare_rates", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: fmt.Sprintf("Here is what %.2f buys across %d destinations.", amount, len(rows)),
		Data:    rows,
		Widget:  "rates_table",
	})
}

// AnalyticsHandler aggregates the transfer history.
func (h *Handlers) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.Analytics(r.Context())
	if err != nil {
		h.handleServiceError(w, "analytics", err)
		return
	}

	summary := "No transfers yet."
	if analytics.TransferCount > 0 {
		summary = fmt.Sprintf("You have sent %.2f across %d transfers, paying %.2f in fees.",
			analytics.TotalSent, analytics.TransferCount, analytics.TotalFees)
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: summary,
		Data:    analytics,
		Widget:  "analytics_dashboard",
	})
}

// SaveRecipientHandler saves a recipient for later reuse.
func (h *Handlers) SaveRecipientHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=save_recipient outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	recipient, err := h.service.SaveRecipient(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, "save_recipient", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toolResponse{
		Summary: fmt.Sprintf("Saved %s (%s) for future transfers.", recipient.Name, recipient.Country),
		Data:    recipient,
		Widget:  "recipient_card",
	})
}

// ListRecipientsHandler lists saved recipients.
func (h *Handlers) ListRecipientsHandler(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.service.ListRecipients(r.Context())
	if err != nil {
		h.handleServiceError(w, "list_recipients", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: fmt.Sprintf("You have %d saved recipients.", len(recipients)),
		Data:    recipients,
		Widget:  "recipient_list",
	})
}

// DeleteRecipientHandler removes a saved recipient.
func (h *Handlers) DeleteRecipientHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteRecipient(r.Context(), id); err != nil {
		h.handleServiceError(w, "delete_recipient", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: "Recipient removed.",
		Data:    map[string]string{"id": id},
		Widget:  "recipient_list",
	})
}

type sendToRecipientRequest struct {
	Amount           float64           `json:"amount"`
	RecipientDetails map[string]string `json:"recipient_details,omitempty"`
}

// SendToRecipientHandler submits a transfer reusing a saved recipient.
func (h *Handlers) SendToRecipientHandler(w http.ResponseWriter, r *http.Request) {
	if !h.consumeSubmitBudget(w, r) {
		return
	}
	id := chi.URLParam(r, "id")

	var req sendToRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=send_to_recipient outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	transfer, breakdown, err := h.service.SendToRecipient(r.Context(), id, req.Amount, req.RecipientDetails)
	if err != nil {
		h.handleServiceError(w, "send_to_recipient", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toolResponse{
		Summary: fmt.Sprintf("Sent %.2f %s to %s in %s.",
			transfer.SourceAmount, transfer.SourceCurrency, transfer.RecipientName, transfer.RecipientCountry),
		Data:    submittedTransferData{Transfer: transfer, Breakdown: breakdown},
		Widget:  "transfer_card",
	})
}

// CreateScheduleHandler creates a recurring transfer schedule.
func (h *Handlers) CreateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=create_schedule outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	preview, err := h.service.CreateSchedule(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, "create_schedule", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toolResponse{
		Summary: fmt.Sprintf("Scheduled %.2f %s to %s %s, starting %s.",
			preview.Schedule.Amount, preview.Schedule.CurrencyFrom, preview.Schedule.RecipientName,
			preview.Schedule.Frequency, preview.Schedule.NextExecutionAt.Format("Jan 2, 2006")),
		Data:   preview,
		Widget: "schedule_card",
	})
}

// ListSchedulesHandler lists all schedules.
func (h *Handlers) ListSchedulesHandler(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.service.ListSchedules(r.Context())
	if err != nil {
		h.handleServiceError(w, "list_schedules", err)
		return
	}

	var active int
	for _, s := range schedules {
		if s.Status == domain.ScheduleActive {
			active++
		}
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: fmt.Sprintf("You have %d schedules, %d active.", len(schedules), active),
		Data:    schedules,
		Widget:  "schedule_list",
	})
}

// CancelScheduleHandler cancels an active schedule.
func (h *Handlers) CancelScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	schedule, err := h.service.CancelSchedule(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, "cancel_schedule", err)
		return
	}

	h.writeJSON(w, http.StatusOK, toolResponse{
		Summary: fmt.Sprintf("Cancelled the %s schedule to %s.", schedule.Frequency, schedule.RecipientName),
		Data:    schedule,
		Widget:  "schedule_card",
	})
}

// consumeSubmitBudget applies the distributed submission rate limit when configured.
// Redis unavailability fails open: money movement must not depend on the limiter.
func (h *Handlers) consumeSubmitBudget(w http.ResponseWriter, r *http.Request) bool {
	if h.limiter == nil || h.limitPerMinute <= 0 {
		return true
	}

	subject := r.Header.Get(internalAPIKeyHeader)
	if subject == "" {
		subject = r.RemoteAddr
	}

	count, retryAfter, err := h.limiter.ConsumeRateLimit(r.Context(), "submit", subject, h.limitPerMinute, time.Minute)
	if err != nil {
		log.Printf("level=warn component=api endpoint=submit_transfer msg=\"rate limiter unavailable; failing open\" err=%v", err)
		return true
	}
	if count > h.limitPerMinute {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		h.writeError(w, http.StatusTooManyRequests, "Too many transfer submissions. Please wait and try again.")
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP statuses. Unknown errors are logged
// and surfaced as 500s without leaking internals.
func (h *Handlers) handleServiceError(w http.ResponseWriter, endpoint string, err error) {
	log.Printf("level=warn component=api endpoint=%s outcome=failed err=%v", endpoint, err)

	var corrErr *app.UnsupportedCorridorError
	switch {
	case errors.As(err, &corrErr),
		errors.Is(err, app.ErrInvalidAmount),
		errors.Is(err, app.ErrAmountExceedsLimit),
		errors.Is(err, app.ErrMissingRecipient),
		errors.Is(err, app.ErrMissingCountry),
		errors.Is(err, app.ErrUnknownFrequency):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrRateUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, "Exchange rates are temporarily unavailable. Please try again shortly.")
	case errors.Is(err, store.ErrTransferNotFound):
		h.writeError(w, http.StatusNotFound, "Transfer not found. Use the history operation to review past transfers.")
	case errors.Is(err, store.ErrRecipientNotFound):
		h.writeError(w, http.StatusNotFound, "Recipient not found. Use the list-recipients operation to review saved recipients.")
	case errors.Is(err, store.ErrScheduleNotFound):
		h.writeError(w, http.StatusNotFound, "Schedule not found. Use the list-schedules operation to review schedules.")
	case errors.Is(err, app.ErrNoMatchingTransfer):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrScheduleNotActive):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSON is a helper for writing JSON responses.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
