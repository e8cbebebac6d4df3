/**
 * @description
 * In-memory implementation of the store interfaces. This is the reference storage for
 * the remit-service: keyed maps with insertion-order slices and per-store monotonic
 * identifier counters formatted with a fixed prefix (TRF-, RCP-, SCH-).
 *
 * A single mutex serializes all access, so identifier reservation happens before any
 * caller can suspend and two concurrent submissions can never share an id.
 */

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/remitflow/remit-service/internal/domain"
)

const (
	transferIDPrefix  = "TRF-"
	recipientIDPrefix = "RCP-"
	scheduleIDPrefix  = "SCH-"

	// Counters start above 1000 so identifiers read as stable references rather than
	// row numbers.
	idCounterStart = 1000
)

// MemoryRepository is an in-process Repository. Safe for concurrent use.
type MemoryRepository struct {
	mu sync.Mutex

	transferSeq  int64
	recipientSeq int64
	scheduleSeq  int64

	transfers     map[string]*domain.Transfer
	transferOrder []string

	recipients     map[string]*domain.Recipient
	recipientOrder []string

	schedules     map[string]*domain.ScheduledTransfer
	scheduleOrder []string
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		transferSeq:  idCounterStart,
		recipientSeq: idCounterStart,
		scheduleSeq:  idCounterStart,
		transfers:    make(map[string]*domain.Transfer),
		recipients:   make(map[string]*domain.Recipient),
		schedules:    make(map[string]*domain.ScheduledTransfer),
	}
}

// CreateTransfer assigns the next TRF- identifier and stores a copy of the record.
func (m *MemoryRepository) CreateTransfer(ctx context.Context, t *domain.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transferSeq++
	t.ID = fmt.Sprintf("%s%d", transferIDPrefix, m.transferSeq)

	cp := *t
	m.transfers[t.ID] = &cp
	m.transferOrder = append(m.transferOrder, t.ID)
	return nil
}

func (m *MemoryRepository) GetTransferByID(ctx context.Context, id string) (*domain.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transfers[id]
	if !ok {
		return nil, ErrTransferNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryRepository) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Transfer, 0, len(m.transferOrder))
	for _, id := range m.transferOrder {
		out = append(out, *m.transfers[id])
	}
	return out, nil
}

func (m *MemoryRepository) AdvanceTransferStatus(ctx context.Context, id string, from, to domain.TransferStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transfers[id]
	if !ok {
		return ErrTransferNotFound
	}
	if t.Status != from {
		return ErrTransferStatusChanged
	}
	t.Status = to
	return nil
}

// CreateRecipient assigns the next RCP- identifier and stores a copy of the record.
func (m *MemoryRepository) CreateRecipient(ctx context.Context, r *domain.Recipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recipientSeq++
	r.ID = fmt.Sprintf("%s%d", recipientIDPrefix, m.recipientSeq)

	cp := *r
	m.recipients[r.ID] = &cp
	m.recipientOrder = append(m.recipientOrder, r.ID)
	return nil
}

func (m *MemoryRepository) GetRecipientByID(ctx context.Context, id string) (*domain.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.recipients[id]
	if !ok {
		return nil, ErrRecipientNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryRepository) ListRecipients(ctx context.Context) ([]domain.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Recipient, 0, len(m.recipientOrder))
	for _, id := range m.recipientOrder {
		out = append(out, *m.recipients[id])
	}
	return out, nil
}

func (m *MemoryRepository) DeleteRecipient(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipients[id]; !ok {
		return ErrRecipientNotFound
	}
	delete(m.recipients, id)
	for i, existing := range m.recipientOrder {
		if existing == id {
			m.recipientOrder = append(m.recipientOrder[:i], m.recipientOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryRepository) RecordRecipientTransfer(ctx context.Context, id string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.recipients[id]
	if !ok {
		return ErrRecipientNotFound
	}
	r.TotalSent += amount
	r.TransferCount++
	return nil
}

// CreateSchedule assigns the next SCH- identifier and stores a copy of the record.
func (m *MemoryRepository) CreateSchedule(ctx context.Context, s *domain.ScheduledTransfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scheduleSeq++
	s.ID = fmt.Sprintf("%s%d", scheduleIDPrefix, m.scheduleSeq)

	cp := *s
	m.schedules[s.ID] = &cp
	m.scheduleOrder = append(m.scheduleOrder, s.ID)
	return nil
}

func (m *MemoryRepository) GetScheduleByID(ctx context.Context, id string) (*domain.ScheduledTransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[id]
	if !ok {
		return nil, ErrScheduleNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) ListSchedules(ctx context.Context) ([]domain.ScheduledTransfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.ScheduledTransfer, 0, len(m.scheduleOrder))
	for _, id := range m.scheduleOrder {
		out = append(out, *m.schedules[id])
	}
	return out, nil
}

func (m *MemoryRepository) CancelSchedule(ctx context.Context, id string, cancelledAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[id]
	if !ok {
		return ErrScheduleNotFound
	}
	if s.Status != domain.ScheduleActive {
		return ErrScheduleNotActive
	}
	s.Status = domain.ScheduleCancelled
	at := cancelledAt
	s.CancelledAt = &at
	return nil
}

func (m *MemoryRepository) AdvanceSchedule(ctx context.Context, id string, next time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[id]
	if !ok {
		return ErrScheduleNotFound
	}
	s.ExecutionCount++
	s.NextExecutionAt = next
	return nil
}
