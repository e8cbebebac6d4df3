package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/remitflow/remit-service/internal/domain"
)

type scheduleSourceStub struct {
	schedules []domain.ScheduledTransfer
	listErr   error

	advanced map[string]time.Time
}

func (s *scheduleSourceStub) ListSchedules(ctx context.Context) ([]domain.ScheduledTransfer, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.schedules, nil
}

func (s *scheduleSourceStub) AdvanceSchedule(ctx context.Context, id string, next time.Time) error {
	if s.advanced == nil {
		s.advanced = make(map[string]time.Time)
	}
	s.advanced[id] = next
	return nil
}

type submitterStub struct {
	submitted []domain.SubmitTransferRequest
	err       error
}

func (s *submitterStub) SubmitTransfer(ctx context.Context, req domain.SubmitTransferRequest) (*domain.Transfer, *domain.FeeBreakdown, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	s.submitted = append(s.submitted, req)
	return &domain.Transfer{ID: "TRF-1001"}, &domain.FeeBreakdown{}, nil
}

func newTestJobs(schedules ScheduleSource, transfers TransferSubmitter, now time.Time) *Jobs {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jobs := NewJobs(schedules, transfers, logger)
	jobs.now = func() time.Time { return now }
	return jobs
}

func TestRunDueSchedules_ExecutesAndAdvancesDueSchedules(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	source := &scheduleSourceStub{schedules: []domain.ScheduledTransfer{
		{
			ID:               "SCH-1001",
			RecipientName:    "Maria Garcia",
			RecipientCountry: "Mexico",
			Amount:           200,
			Frequency:        domain.FrequencyWeekly,
			NextExecutionAt:  now.Add(-time.Hour),
			Status:           domain.ScheduleActive,
		},
	}}
	submitter := &submitterStub{}
	jobs := newTestJobs(source, submitter, now)

	jobs.RunDueSchedules()

	if len(submitter.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(submitter.submitted))
	}
	if submitter.submitted[0].RecipientName != "Maria Garcia" || submitter.submitted[0].Amount != 200 {
		t.Fatalf("unexpected submission: %+v", submitter.submitted[0])
	}

	wantNext := now.Add(-time.Hour).AddDate(0, 0, 7)
	if got := source.advanced["SCH-1001"]; !got.Equal(wantNext) {
		t.Fatalf("expected advance to %v, got %v", wantNext, got)
	}
}

func TestRunDueSchedules_SkipsFutureAndCancelledSchedules(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	source := &scheduleSourceStub{schedules: []domain.ScheduledTransfer{
		{
			ID:              "SCH-1001",
			Frequency:       domain.FrequencyWeekly,
			NextExecutionAt: now.Add(time.Hour),
			Status:          domain.ScheduleActive,
		},
		{
			ID:              "SCH-1002",
			Frequency:       domain.FrequencyWeekly,
			NextExecutionAt: now.Add(-time.Hour),
			Status:          domain.ScheduleCancelled,
		},
	}}
	submitter := &submitterStub{}
	jobs := newTestJobs(source, submitter, now)

	jobs.RunDueSchedules()

	if len(submitter.submitted) != 0 {
		t.Fatalf("expected no submissions, got %d", len(submitter.submitted))
	}
	if len(source.advanced) != 0 {
		t.Fatalf("expected no advances, got %v", source.advanced)
	}
}

func TestRunDueSchedules_LeavesScheduleInPlaceOnSubmissionFailure(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	source := &scheduleSourceStub{schedules: []domain.ScheduledTransfer{
		{
			ID:               "SCH-1001",
			RecipientName:    "Maria",
			RecipientCountry: "Mexico",
			Amount:           100,
			Frequency:        domain.FrequencyMonthly,
			NextExecutionAt:  now.Add(-time.Hour),
			Status:           domain.ScheduleActive,
		},
	}}
	submitter := &submitterStub{err: errors.New("rate source unreachable")}
	jobs := newTestJobs(source, submitter, now)

	jobs.RunDueSchedules()

	if len(source.advanced) != 0 {
		t.Fatalf("expected no advance after a failed submission, got %v", source.advanced)
	}
}

func TestRunDueSchedules_SkipsUnknownFrequencyWithoutAdvancing(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	source := &scheduleSourceStub{schedules: []domain.ScheduledTransfer{
		{
			ID:              "SCH-1001",
			Frequency:       "fortnightly",
			NextExecutionAt: now.Add(-time.Hour),
			Status:          domain.ScheduleActive,
		},
	}}
	submitter := &submitterStub{}
	jobs := newTestJobs(source, submitter, now)

	jobs.RunDueSchedules()

	if len(submitter.submitted) != 0 || len(source.advanced) != 0 {
		t.Fatal("expected unknown-frequency schedule to be skipped entirely")
	}
}

func TestRunDueSchedules_ContinuesPastListError(t *testing.T) {
	source := &scheduleSourceStub{listErr: errors.New("db unavailable")}
	submitter := &submitterStub{}
	jobs := newTestJobs(source, submitter, time.Now().UTC())

	// Must not panic; the job logs and returns.
	jobs.RunDueSchedules()

	if len(submitter.submitted) != 0 {
		t.Fatal("expected no submissions when listing fails")
	}
}
