/**
 * @description
 * This file contains the core orchestration logic for the remit-service. The
 * `Service` struct drives every money-movement operation: corridor validation, fee
 * and rate computation, the provider call sequence (quote -> recipient -> transfer ->
 * funding) with graceful fallback to a simulated transfer, the status state machine,
 * recipient and schedule management, and history analytics.
 *
 * Key behaviors:
 * - Validation failures reject before any side effect.
 * - Any provider failure on the quote/recipient/transfer steps abandons the real
 *   path and falls back to a simulated outcome, recording the error text on the
 *   record for diagnostics.
 * - A funding refusal for a permission reason is a non-fatal partial success: the
 *   transfer persists as awaiting_funding.
 * - Event publication is best-effort and never fails an operation.
 *
 * @dependencies
 * - github.com/google/uuid: Idempotency keys for provider transfer submission.
 * - internal/corridor, internal/domain, internal/store: Domain logic and data access.
 * - pkg/wiseclient, pkg/rabbitmq: External service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/remitflow/remit-service/internal/corridor"
	"github.com/remitflow/remit-service/internal/domain"
	"github.com/remitflow/remit-service/internal/store"
	"github.com/remitflow/remit-service/pkg/rabbitmq"
	"github.com/remitflow/remit-service/pkg/wiseclient"
)

// statusAdvanceProbability biases the per-check coin flip that stands in for an
// asynchronous provider-side settlement probe.
const statusAdvanceProbability = 0.6

// ProviderClient is the subset of the Wise client the orchestrator drives.
type ProviderClient interface {
	CreateQuote(ctx context.Context, sourceCurrency, targetCurrency string, sourceAmount float64) (*wiseclient.Quote, error)
	CreateRecipient(ctx context.Context, currency, holderName, recipientType string, details map[string]interface{}) (*wiseclient.RecipientAccount, error)
	CreateTransfer(ctx context.Context, targetAccountID int64, quoteID, customerTransactionID, reference string) (*wiseclient.Transfer, error)
	FundTransfer(ctx context.Context, transferID int64) (*wiseclient.FundingResult, error)
}

// Options configures the orchestrator.
type Options struct {
	SourceCurrency      string
	Fees                FeeConfig
	PerTransactionLimit float64
	UseRealTransfers    bool
	EventExchange       string
}

// Service provides the core orchestration logic for transfers.
type Service struct {
	repo      store.Repository
	corridors *corridor.Registry
	rates     *RateProvider
	mapper    *RecipientFieldMapper
	provider  ProviderClient
	events    rabbitmq.Publisher
	opts      Options

	// chance and now are injectable for deterministic tests.
	chance func() float64
	now    func() time.Time
}

// NewService creates a new orchestration service instance. provider may be nil when
// real-provider mode is off; events may be nil when no broker is configured.
func NewService(
	repo store.Repository,
	corridors *corridor.Registry,
	rates *RateProvider,
	mapper *RecipientFieldMapper,
	provider ProviderClient,
	events rabbitmq.Publisher,
	opts Options,
) *Service {
	if opts.SourceCurrency == "" {
		opts.SourceCurrency = "USD"
	}
	return &Service{
		repo:      repo,
		corridors: corridors,
		rates:     rates,
		mapper:    mapper,
		provider:  provider,
		events:    events,
		opts:      opts,
		chance:    rand.Float64,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Corridors returns the corridor registry for listing operations.
func (s *Service) Corridors() *corridor.Registry {
	return s.corridors
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// validateSubmission runs the common amount/corridor/rate validation and returns the
// corridor, rate, and fee breakdown. No side effects.
func (s *Service) validateSubmission(ctx context.Context, amount float64, country string) (corridor.Corridor, domain.FeeBreakdown, error) {
	if amount <= 0 {
		return corridor.Corridor{}, domain.FeeBreakdown{}, ErrInvalidAmount
	}
	if amount > s.opts.PerTransactionLimit {
		return corridor.Corridor{}, domain.FeeBreakdown{}, fmt.Errorf("%w: %.2f %s", ErrAmountExceedsLimit, s.opts.PerTransactionLimit, s.opts.SourceCurrency)
	}
	if strings.TrimSpace(country) == "" {
		return corridor.Corridor{}, domain.FeeBreakdown{}, ErrMissingCountry
	}

	corr, ok := s.corridors.FindByCountry(country)
	if !ok {
		return corridor.Corridor{}, domain.FeeBreakdown{}, &UnsupportedCorridorError{
			Country:   country,
			Supported: s.corridors.Countries(),
		}
	}

	rate, err := s.rates.RateFor(ctx, corr.CurrencyCode)
	if err != nil {
		return corridor.Corridor{}, domain.FeeBreakdown{}, err
	}

	fee := round2(ComputeFee(amount, s.opts.Fees))
	net := amount - fee
	breakdown := domain.FeeBreakdown{
		BaseAmount:   amount,
		FeePercent:   s.opts.Fees.Percent,
		FeeAmount:    fee,
		NetAmount:    net,
		ExchangeRate: rate,
		TargetAmount: round2(net * rate),
	}
	return corr, breakdown, nil
}

// SubmitTransfer runs the full send operation. The returned FeeBreakdown is
// display-only metadata and is not persisted.
func (s *Service) SubmitTransfer(ctx context.Context, req domain.SubmitTransferRequest) (*domain.Transfer, *domain.FeeBreakdown, error) {
	if strings.TrimSpace(req.RecipientName) == "" {
		return nil, nil, ErrMissingRecipient
	}

	// Steps 1-4: validate amount and corridor, resolve rate, compute fees. Rejections
	// here have no side effect.
	corr, breakdown, err := s.validateSubmission(ctx, req.Amount, req.DestinationCountry)
	if err != nil {
		return nil, nil, err
	}

	transfer := &domain.Transfer{
		SourceCurrency:    s.opts.SourceCurrency,
		TargetCurrency:    corr.CurrencyCode,
		SourceAmount:      req.Amount,
		FeeAmount:         breakdown.FeeAmount,
		NetAmount:         breakdown.NetAmount,
		ExchangeRate:      breakdown.ExchangeRate,
		TargetAmount:      breakdown.TargetAmount,
		RecipientName:     strings.TrimSpace(req.RecipientName),
		RecipientCountry:  corr.Country,
		DeliveryTimeLabel: corr.DeliveryTimeLabel,
		CreatedAt:         s.now(),
	}

	// Step 5: drive the provider sequence when real mode is configured; any failure
	// on the quote/recipient/transfer steps (or a non-permission funding failure)
	// abandons the real path.
	if s.opts.UseRealTransfers && s.provider != nil {
		providerID, status, provErr := s.runProviderSequence(ctx, req, corr)
		if provErr == nil {
			transfer.ProviderTransferID = &providerID
			transfer.Status = status
			transfer.IsRealTransfer = true
			transfer.EstimatedArrival = s.estimateArrival(corr.DeliveryTimeLabel)
		} else {
			note := fmt.Sprintf("provider unavailable, simulated transfer created: %v", provErr)
			transfer.FallbackNote = &note
			log.Printf("level=warn component=orchestrator msg=\"provider sequence failed; falling back to simulation\" country=%s err=%v", corr.Country, provErr)
			s.simulateOutcome(transfer)
		}
	} else {
		// Step 6: simulated path; no external system is contacted.
		s.simulateOutcome(transfer)
	}

	// Step 7: reserve the identifier and persist before returning.
	if err := s.repo.CreateTransfer(ctx, transfer); err != nil {
		return nil, nil, fmt.Errorf("failed to persist transfer: %w", err)
	}

	s.publish(ctx, "transfer.created", domain.TransferCreatedEvent{
		TransferID:     transfer.ID,
		SourceAmount:   transfer.SourceAmount,
		SourceCurrency: transfer.SourceCurrency,
		TargetCurrency: transfer.TargetCurrency,
		Status:         transfer.Status,
		IsRealTransfer: transfer.IsRealTransfer,
		Timestamp:      s.now(),
	})

	return transfer, &breakdown, nil
}

// runProviderSequence executes quote -> recipient -> transfer -> funding against the
// provider. A funding refusal for a permission reason is swallowed: the transfer is
// returned as awaiting_funding rather than failing.
func (s *Service) runProviderSequence(ctx context.Context, req domain.SubmitTransferRequest, corr corridor.Corridor) (string, domain.TransferStatus, error) {
	quote, err := s.provider.CreateQuote(ctx, s.opts.SourceCurrency, corr.CurrencyCode, req.Amount)
	if err != nil {
		return "", "", fmt.Errorf("quote step: %w", err)
	}

	fields := s.mapper.Map(corr.CurrencyCode, req.RecipientDetails)
	recipient, err := s.provider.CreateRecipient(ctx, corr.CurrencyCode, req.RecipientName, fields.Type, fields.Details)
	if err != nil {
		return "", "", fmt.Errorf("recipient step: %w", err)
	}

	// Fresh idempotency key per submission so provider-side retries are not
	// duplicated.
	transfer, err := s.provider.CreateTransfer(ctx, recipient.ID, quote.ID, uuid.NewString(), "Remittance")
	if err != nil {
		return "", "", fmt.Errorf("transfer step: %w", err)
	}
	providerID := fmt.Sprintf("%d", transfer.ID)

	if _, err := s.provider.FundTransfer(ctx, transfer.ID); err != nil {
		if wiseclient.IsPermissionError(err) {
			log.Printf("level=warn component=orchestrator msg=\"funding not permitted for operator token; transfer left awaiting funding\" provider_transfer_id=%s err=%v", providerID, err)
			return providerID, domain.StatusAwaitingFunding, nil
		}
		return "", "", fmt.Errorf("funding step: %w", err)
	}

	return providerID, domain.StatusProcessing, nil
}

// simulateOutcome synthesizes a plausible status and near-future delivery estimate
// without contacting any external system.
func (s *Service) simulateOutcome(t *domain.Transfer) {
	roll := s.chance()
	switch {
	case roll < 0.5:
		t.Status = domain.StatusPending
	case roll < 0.85:
		t.Status = domain.StatusProcessing
	default:
		t.Status = domain.StatusCompleted
	}
	t.EstimatedArrival = s.estimateArrival(t.DeliveryTimeLabel)
}

func (s *Service) estimateArrival(deliveryLabel string) time.Time {
	now := s.now()
	switch deliveryLabel {
	case "Minutes":
		return now.Add(1 * time.Hour)
	case "1 day":
		return now.Add(24 * time.Hour)
	case "1-2 days":
		return now.Add(48 * time.Hour)
	default:
		return now.Add(72 * time.Hour)
	}
}

// GetTransfer retrieves one transfer by id.
func (s *Service) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return s.repo.GetTransferByID(ctx, id)
}

// CheckStatus probes a transfer's settlement progress. Status advances at most one
// step per invocation along pending -> processing -> completed and never regresses.
// awaiting_funding transfers do not advance; they resolve when the operator funds
// them at the provider.
func (s *Service) CheckStatus(ctx context.Context, id string) (*domain.Transfer, error) {
	transfer, err := s.repo.GetTransferByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := transfer.Status.Next()
	if !ok || s.chance() >= statusAdvanceProbability {
		return transfer, nil
	}

	// The advance is conditional on the status we read: if another check moved the
	// transfer in between, this write is dropped and the stored state is served so
	// a completed transfer can never slide back to processing.
	if err := s.repo.AdvanceTransferStatus(ctx, id, transfer.Status, next); err != nil {
		if errors.Is(err, store.ErrTransferStatusChanged) {
			return s.repo.GetTransferByID(ctx, id)
		}
		return nil, err
	}
	old := transfer.Status
	transfer.Status = next

	s.publish(ctx, "transfer.status.changed", domain.TransferStatusChangedEvent{
		TransferID: id,
		OldStatus:  old,
		NewStatus:  next,
		Timestamp:  s.now(),
	})

	return transfer, nil
}

// History returns all transfers, most recent first.
func (s *Service) History(ctx context.Context) ([]domain.Transfer, error) {
	transfers, err := s.repo.ListTransfers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].CreatedAt.After(transfers[j].CreatedAt)
	})
	return transfers, nil
}

// RepeatTransfer re-sends the most recent transfer to a matching recipient
// (case-insensitive substring match), or the single most recent transfer when name is
// empty. The original amount and fee are reused verbatim; only the exchange rate is
// refreshed. The new transfer completes immediately, which is what distinguishes
// repeat from submit.
func (s *Service) RepeatTransfer(ctx context.Context, name string) (*domain.Transfer, *domain.FeeBreakdown, error) {
	transfers, err := s.repo.ListTransfers(ctx)
	if err != nil {
		return nil, nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	var original *domain.Transfer
	for i := range transfers {
		t := &transfers[i]
		if needle != "" && !strings.Contains(strings.ToLower(t.RecipientName), needle) {
			continue
		}
		if original == nil || t.CreatedAt.After(original.CreatedAt) {
			original = t
		}
	}
	if original == nil {
		return nil, nil, ErrNoMatchingTransfer
	}

	rate, err := s.rates.RateFor(ctx, original.TargetCurrency)
	if err != nil {
		return nil, nil, err
	}

	net := original.SourceAmount - original.FeeAmount
	repeat := &domain.Transfer{
		SourceCurrency:    original.SourceCurrency,
		TargetCurrency:    original.TargetCurrency,
		SourceAmount:      original.SourceAmount,
		FeeAmount:         original.FeeAmount,
		NetAmount:         net,
		ExchangeRate:      rate,
		TargetAmount:      round2(net * rate),
		RecipientName:     original.RecipientName,
		RecipientCountry:  original.RecipientCountry,
		DeliveryTimeLabel: original.DeliveryTimeLabel,
		Status:            domain.StatusCompleted,
		EstimatedArrival:  s.now(),
		CreatedAt:         s.now(),
	}

	if err := s.repo.CreateTransfer(ctx, repeat); err != nil {
		return nil, nil, fmt.Errorf("failed to persist repeat transfer: %w", err)
	}

	s.publish(ctx, "transfer.created", domain.TransferCreatedEvent{
		TransferID:     repeat.ID,
		SourceAmount:   repeat.SourceAmount,
		SourceCurrency: repeat.SourceCurrency,
		TargetCurrency: repeat.TargetCurrency,
		Status:         repeat.Status,
		IsRealTransfer: repeat.IsRealTransfer,
		Timestamp:      s.now(),
	})

	feePercent := 0.0
	if repeat.SourceAmount > 0 {
		feePercent = round2(repeat.FeeAmount / repeat.SourceAmount * 100)
	}
	breakdown := domain.FeeBreakdown{
		BaseAmount:   repeat.SourceAmount,
		FeePercent:   feePercent,
		FeeAmount:    repeat.FeeAmount,
		NetAmount:    repeat.NetAmount,
		ExchangeRate: repeat.ExchangeRate,
		TargetAmount: repeat.TargetAmount,
	}
	return repeat, &breakdown, nil
}

// QuoteTransfer computes the fee/rate breakdown for a prospective transfer without
// persisting anything.
func (s *Service) QuoteTransfer(ctx context.Context, amount float64, country string) (*domain.TransferQuote, error) {
	corr, breakdown, err := s.validateSubmission(ctx, amount, country)
	if err != nil {
		return nil, err
	}
	return &domain.TransferQuote{
		DestinationCountry: corr.Country,
		TargetCurrency:     corr.CurrencyCode,
		DeliveryTimeLabel:  corr.DeliveryTimeLabel,
		Breakdown:          breakdown,
		QuotedAt:           s.now(),
	}, nil
}

// CompareRates produces one row per corridor for a given amount, applying the
// standard fee once and converting the net amount at each corridor's current rate.
// Corridors whose currency is absent from the snapshot are skipped.
func (s *Service) CompareRates(ctx context.Context, amount float64) ([]domain.RateComparison, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	fee := round2(ComputeFee(amount, s.opts.Fees))
	net := amount - fee
	snapshot := s.rates.GetRates(ctx)

	var rows []domain.RateComparison
	for _, corr := range s.corridors.ListAll() {
		rate, ok := snapshot.Rates[corr.CurrencyCode]
		if !ok || rate <= 0 {
			continue
		}
		rows = append(rows, domain.RateComparison{
			Country:           corr.Country,
			CurrencyCode:      corr.CurrencyCode,
			ExchangeRate:      rate,
			TargetAmount:      round2(net * rate),
			DeliveryTimeLabel: corr.DeliveryTimeLabel,
		})
	}
	return rows, nil
}

// Analytics aggregates the transfer history.
func (s *Service) Analytics(ctx context.Context) (*domain.TransferAnalytics, error) {
	transfers, err := s.repo.ListTransfers(ctx)
	if err != nil {
		return nil, err
	}

	out := &domain.TransferAnalytics{
		CountsByCountry:  make(map[string]int),
		AmountsByCountry: make(map[string]float64),
	}
	totalsByRecipient := make(map[string]float64)
	for _, t := range transfers {
		out.TransferCount++
		out.TotalSent += t.SourceAmount
		out.TotalFees += t.FeeAmount
		out.CountsByCountry[t.RecipientCountry]++
		out.AmountsByCountry[t.RecipientCountry] += t.SourceAmount
		totalsByRecipient[t.RecipientName] += t.SourceAmount
		if t.Status == domain.StatusCompleted {
			out.CompletedCount++
		}
	}
	if out.TransferCount > 0 {
		out.AverageAmount = round2(out.TotalSent / float64(out.TransferCount))
	}

	topTotal := 0.0
	for name, total := range totalsByRecipient {
		if total > topTotal || (total == topTotal && name < out.TopRecipient) {
			out.TopRecipient = name
			topTotal = total
		}
	}
	return out, nil
}

// SaveRecipient creates a saved recipient for a supported corridor.
func (s *Service) SaveRecipient(ctx context.Context, req domain.SaveRecipientRequest) (*domain.Recipient, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrMissingRecipient
	}
	if strings.TrimSpace(req.Country) == "" {
		return nil, ErrMissingCountry
	}
	corr, ok := s.corridors.FindByCountry(req.Country)
	if !ok {
		return nil, &UnsupportedCorridorError{Country: req.Country, Supported: s.corridors.Countries()}
	}

	recipient := &domain.Recipient{
		Name:         strings.TrimSpace(req.Name),
		Country:      corr.Country,
		CurrencyCode: corr.CurrencyCode,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateRecipient(ctx, recipient); err != nil {
		return nil, fmt.Errorf("failed to persist recipient: %w", err)
	}
	return recipient, nil
}

// ListRecipients returns all saved recipients in insertion order.
func (s *Service) ListRecipients(ctx context.Context) ([]domain.Recipient, error) {
	return s.repo.ListRecipients(ctx)
}

// DeleteRecipient removes a saved recipient permanently.
func (s *Service) DeleteRecipient(ctx context.Context, id string) error {
	return s.repo.DeleteRecipient(ctx, id)
}

// SendToRecipient submits a transfer reusing a saved recipient, then records the
// reuse on the recipient's running totals.
func (s *Service) SendToRecipient(ctx context.Context, recipientID string, amount float64, details map[string]string) (*domain.Transfer, *domain.FeeBreakdown, error) {
	recipient, err := s.repo.GetRecipientByID(ctx, recipientID)
	if err != nil {
		return nil, nil, err
	}

	transfer, breakdown, err := s.SubmitTransfer(ctx, domain.SubmitTransferRequest{
		Amount:             amount,
		DestinationCountry: recipient.Country,
		RecipientName:      recipient.Name,
		RecipientDetails:   details,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.RecordRecipientTransfer(ctx, recipientID, amount); err != nil {
		log.Printf("level=warn component=orchestrator msg=\"failed to record recipient totals\" recipient_id=%s err=%v", recipientID, err)
	}
	return transfer, breakdown, nil
}

// CreateSchedule creates a recurring transfer schedule. The engine only computes
// execution dates; the cron runner performs the submissions.
func (s *Service) CreateSchedule(ctx context.Context, req domain.CreateScheduleRequest) (*domain.SchedulePreview, error) {
	if strings.TrimSpace(req.RecipientName) == "" {
		return nil, ErrMissingRecipient
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Amount > s.opts.PerTransactionLimit {
		return nil, fmt.Errorf("%w: %.2f %s", ErrAmountExceedsLimit, s.opts.PerTransactionLimit, s.opts.SourceCurrency)
	}
	if !IsKnownFrequency(req.Frequency) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, req.Frequency)
	}
	corr, ok := s.corridors.FindByCountry(req.DestinationCountry)
	if !ok {
		return nil, &UnsupportedCorridorError{Country: req.DestinationCountry, Supported: s.corridors.Countries()}
	}

	start := req.StartDate
	if start.IsZero() {
		start = s.now()
	}

	schedule := &domain.ScheduledTransfer{
		RecipientName:    strings.TrimSpace(req.RecipientName),
		RecipientCountry: corr.Country,
		Amount:           req.Amount,
		CurrencyFrom:     s.opts.SourceCurrency,
		CurrencyTo:       corr.CurrencyCode,
		Frequency:        req.Frequency,
		NextExecutionAt:  start,
		Status:           domain.ScheduleActive,
		CreatedAt:        s.now(),
	}
	if err := s.repo.CreateSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to persist schedule: %w", err)
	}

	s.publish(ctx, "schedule.created", domain.ScheduleCreatedEvent{
		ScheduleID:      schedule.ID,
		Frequency:       schedule.Frequency,
		NextExecutionAt: schedule.NextExecutionAt,
		Timestamp:       s.now(),
	})

	return &domain.SchedulePreview{
		Schedule:      schedule,
		UpcomingDates: NextDates(schedule.Frequency, start, 3),
	}, nil
}

// ListSchedules returns all schedules in insertion order.
func (s *Service) ListSchedules(ctx context.Context) ([]domain.ScheduledTransfer, error) {
	return s.repo.ListSchedules(ctx)
}

// CancelSchedule transitions a schedule active -> cancelled; cancellation is
// terminal.
func (s *Service) CancelSchedule(ctx context.Context, id string) (*domain.ScheduledTransfer, error) {
	if err := s.repo.CancelSchedule(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.repo.GetScheduleByID(ctx, id)
}

// publish emits a lifecycle event. Publication is best-effort: failures are logged
// and never surfaced to the caller.
func (s *Service) publish(ctx context.Context, routingKey string, body interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, s.opts.EventExchange, routingKey, body); err != nil {
		log.Printf("level=warn component=orchestrator msg=\"event publish failed\" routing_key=%s err=%v", routingKey, err)
	}
}
