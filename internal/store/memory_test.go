package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/remitflow/remit-service/internal/domain"
)

func TestCreateTransferAssignsPrefixedMonotonicIDs(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := &domain.Transfer{RecipientName: "Maria", Status: domain.StatusPending}
	second := &domain.Transfer{RecipientName: "Jose", Status: domain.StatusPending}

	if err := repo.CreateTransfer(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.CreateTransfer(ctx, second); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if !strings.HasPrefix(first.ID, "TRF-") {
		t.Fatalf("expected TRF- prefix, got %s", first.ID)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %s twice", first.ID)
	}
	if first.ID >= second.ID {
		t.Fatalf("expected increasing ids, got %s then %s", first.ID, second.ID)
	}
}

func TestListTransfersPreservesInsertionOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	names := []string{"Maria", "Jose", "Priya"}
	for _, name := range names {
		if err := repo.CreateTransfer(ctx, &domain.Transfer{RecipientName: name}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	list, err := repo.ListTransfers(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != len(names) {
		t.Fatalf("expected %d transfers, got %d", len(names), len(list))
	}
	for i, name := range names {
		if list[i].RecipientName != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, list[i].RecipientName)
		}
	}
}

func TestGetTransferReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	tr := &domain.Transfer{RecipientName: "Maria", Status: domain.StatusPending}
	if err := repo.CreateTransfer(ctx, tr); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := repo.GetTransferByID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	got.Status = domain.StatusCompleted

	again, err := repo.GetTransferByID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if again.Status != domain.StatusPending {
		t.Fatal("mutating a returned transfer must not affect the store")
	}
}

func TestAdvanceTransferStatusRejectsStaleWriter(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	tr := &domain.Transfer{RecipientName: "Maria", Status: domain.StatusPending}
	if err := repo.CreateTransfer(ctx, tr); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.AdvanceTransferStatus(ctx, tr.ID, domain.StatusPending, domain.StatusProcessing); err != nil {
		t.Fatalf("first advance failed: %v", err)
	}
	if err := repo.AdvanceTransferStatus(ctx, tr.ID, domain.StatusProcessing, domain.StatusCompleted); err != nil {
		t.Fatalf("second advance failed: %v", err)
	}

	// A writer that read the transfer while it was still pending lost the race and
	// must not overwrite the completed state.
	err := repo.AdvanceTransferStatus(ctx, tr.ID, domain.StatusPending, domain.StatusProcessing)
	if !errors.Is(err, ErrTransferStatusChanged) {
		t.Fatalf("expected ErrTransferStatusChanged, got %v", err)
	}

	got, err := repo.GetTransferByID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("expected completed to hold, got %s", got.Status)
	}

	err = repo.AdvanceTransferStatus(ctx, "TRF-9999", domain.StatusPending, domain.StatusProcessing)
	if !errors.Is(err, ErrTransferNotFound) {
		t.Fatalf("expected ErrTransferNotFound for unknown id, got %v", err)
	}
}

func TestDeleteRecipientTwiceReturnsNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	r := &domain.Recipient{Name: "Maria", Country: "Mexico", CurrencyCode: "MXN"}
	if err := repo.CreateRecipient(ctx, r); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.DeleteRecipient(ctx, r.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	err := repo.DeleteRecipient(ctx, r.ID)
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}

	list, err := repo.ListRecipients(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no recipients after delete, got %d", len(list))
	}
}

func TestRecordRecipientTransferMutatesTotals(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	r := &domain.Recipient{Name: "Maria", Country: "Mexico", CurrencyCode: "MXN"}
	if err := repo.CreateRecipient(ctx, r); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.RecordRecipientTransfer(ctx, r.ID, 150); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := repo.RecordRecipientTransfer(ctx, r.ID, 50); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	got, err := repo.GetRecipientByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.TotalSent != 200 {
		t.Fatalf("expected total sent 200, got %f", got.TotalSent)
	}
	if got.TransferCount != 2 {
		t.Fatalf("expected transfer count 2, got %d", got.TransferCount)
	}
}

func TestCancelScheduleIsTerminal(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	s := &domain.ScheduledTransfer{
		RecipientName: "Maria",
		Frequency:     domain.FrequencyWeekly,
		Status:        domain.ScheduleActive,
	}
	if err := repo.CreateSchedule(ctx, s); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	now := time.Now().UTC()
	if err := repo.CancelSchedule(ctx, s.ID, now); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	err := repo.CancelSchedule(ctx, s.ID, now)
	if !errors.Is(err, ErrScheduleNotActive) {
		t.Fatalf("expected ErrScheduleNotActive on second cancel, got %v", err)
	}

	got, err := repo.GetScheduleByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != domain.ScheduleCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
	if got.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be set")
	}
}

func TestConcurrentCreatesNeverShareAnID(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const workers = 16
	const perWorker = 25

	ids := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tr := &domain.Transfer{RecipientName: "Maria"}
				if err := repo.CreateTransfer(ctx, tr); err != nil {
					t.Errorf("create failed: %v", err)
					return
				}
				ids <- tr.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d ids, got %d", workers*perWorker, len(seen))
	}
}
