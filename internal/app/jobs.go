/**
 * @description
 * Scheduled job implementations for the remit-service. The recurring transfer job
 * walks the active schedules, submits a transfer for each one whose execution time
 * has arrived, and advances the schedule to its next execution date.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/remitflow/remit-service/internal/domain"
)

// ScheduleSource defines the schedule operations needed by the jobs.
type ScheduleSource interface {
	ListSchedules(ctx context.Context) ([]domain.ScheduledTransfer, error)
	AdvanceSchedule(ctx context.Context, id string, next time.Time) error
}

// TransferSubmitter defines the submission operation needed by the jobs.
type TransferSubmitter interface {
	SubmitTransfer(ctx context.Context, req domain.SubmitTransferRequest) (*domain.Transfer, *domain.FeeBreakdown, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	schedules ScheduleSource
	transfers TransferSubmitter
	logger    *slog.Logger
	now       func() time.Time
}

// NewJobs creates a new Jobs runner.
func NewJobs(schedules ScheduleSource, transfers TransferSubmitter, logger *slog.Logger) *Jobs {
	return &Jobs{
		schedules: schedules,
		transfers: transfers,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RunDueSchedules executes every active schedule whose execution time has arrived.
// A failed submission leaves the schedule at its current execution date so the next
// run retries it; a successful one advances the date by the schedule's frequency.
func (j *Jobs) RunDueSchedules() {
	j.logger.Info("starting recurring transfer job")
	ctx := context.Background()
	now := j.now()

	schedules, err := j.schedules.ListSchedules(ctx)
	if err != nil {
		j.logger.Error("failed to list schedules", "error", err)
		return
	}

	var due int
	for _, schedule := range schedules {
		if schedule.Status != domain.ScheduleActive || schedule.NextExecutionAt.After(now) {
			continue
		}
		due++

		if !IsKnownFrequency(schedule.Frequency) {
			// Creation validates frequencies, so this only occurs with seeded or
			// migrated data. Advancing would loop on the same date forever.
			j.logger.Warn("skipping schedule with unknown frequency", "schedule_id", schedule.ID, "frequency", schedule.Frequency)
			continue
		}

		j.logger.Info("executing scheduled transfer", "schedule_id", schedule.ID, "recipient", schedule.RecipientName, "amount", schedule.Amount)

		transfer, _, err := j.transfers.SubmitTransfer(ctx, domain.SubmitTransferRequest{
			Amount:             schedule.Amount,
			DestinationCountry: schedule.RecipientCountry,
			RecipientName:      schedule.RecipientName,
		})
		if err != nil {
			j.logger.Error("scheduled transfer submission failed", "schedule_id", schedule.ID, "error", err)
			continue
		}

		next := AdvanceDate(schedule.Frequency, schedule.NextExecutionAt)
		if err := j.schedules.AdvanceSchedule(ctx, schedule.ID, next); err != nil {
			j.logger.Error("failed to advance schedule", "schedule_id", schedule.ID, "error", err)
			continue
		}

		j.logger.Info("scheduled transfer executed", "schedule_id", schedule.ID, "transfer_id", transfer.ID, "next_execution_at", next)
	}

	if due == 0 {
		j.logger.Info("no schedules due")
	}
	j.logger.Info("recurring transfer job finished")
}
