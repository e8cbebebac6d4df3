/**
 * @description
 * This file defines the store interfaces for the remit-service. Defining interfaces
 * decouples the orchestration logic from the storage technology: the default
 * implementation is an in-memory keyed store, and a PostgreSQL implementation can be
 * swapped in without changing the orchestration contract.
 *
 * @dependencies
 * - context, errors, time: Standard Go libraries.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/remitflow/remit-service/internal/domain"
)

// Sentinel errors returned by store implementations. Callers match with errors.Is.
var (
	ErrTransferNotFound      = errors.New("transfer not found")
	ErrRecipientNotFound     = errors.New("recipient not found")
	ErrScheduleNotFound      = errors.New("schedule not found")
	ErrScheduleNotActive     = errors.New("schedule is not active")
	ErrTransferStatusChanged = errors.New("transfer status changed concurrently")
)

// TransferStore persists transfers. Transfers are append-only: they are created once
// and never deleted; only their status progresses.
type TransferStore interface {
	// CreateTransfer assigns the next transfer identifier and persists the record.
	CreateTransfer(ctx context.Context, t *domain.Transfer) error
	GetTransferByID(ctx context.Context, id string) (*domain.Transfer, error)
	// ListTransfers returns all transfers in insertion order; callers sort.
	ListTransfers(ctx context.Context) ([]domain.Transfer, error)
	// AdvanceTransferStatus moves a transfer from one status to another, applying
	// the write only while the stored status still equals from. A writer that lost
	// the race gets ErrTransferStatusChanged and the record stays untouched, so
	// two concurrent checks can never walk a transfer backwards.
	AdvanceTransferStatus(ctx context.Context, id string, from, to domain.TransferStatus) error
}

// RecipientStore persists saved recipients.
type RecipientStore interface {
	CreateRecipient(ctx context.Context, r *domain.Recipient) error
	GetRecipientByID(ctx context.Context, id string) (*domain.Recipient, error)
	ListRecipients(ctx context.Context) ([]domain.Recipient, error)
	// DeleteRecipient removes a recipient permanently. A second delete of the same id
	// returns ErrRecipientNotFound.
	DeleteRecipient(ctx context.Context, id string) error
	// RecordRecipientTransfer adds one reuse of a saved recipient: TotalSent grows by
	// amount and TransferCount by one.
	RecordRecipientTransfer(ctx context.Context, id string, amount float64) error
}

// ScheduleStore persists recurring transfer schedules.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, s *domain.ScheduledTransfer) error
	GetScheduleByID(ctx context.Context, id string) (*domain.ScheduledTransfer, error)
	ListSchedules(ctx context.Context) ([]domain.ScheduledTransfer, error)
	// CancelSchedule transitions active -> cancelled. Cancelling a schedule that is
	// already cancelled returns ErrScheduleNotActive.
	CancelSchedule(ctx context.Context, id string, cancelledAt time.Time) error
	// AdvanceSchedule records one execution: ExecutionCount grows by one and
	// NextExecutionAt moves to next.
	AdvanceSchedule(ctx context.Context, id string, next time.Time) error
}

// Repository aggregates the three stores behind one dependency for wiring.
type Repository interface {
	TransferStore
	RecipientStore
	ScheduleStore
}
