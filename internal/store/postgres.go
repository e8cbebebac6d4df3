/**
 * @description
 * PostgreSQL implementation of the store interfaces, selected when DATABASE_URL is
 * configured. Identifier allocation uses per-entity sequences so the TRF-/RCP-/SCH-
 * prefixed ids stay monotonic across processes, satisfying the concurrency
 * requirement that the in-memory counters only meet under a single process.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: PostgreSQL connection pooling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/remitflow/remit-service/internal/domain"
)

// PostgresRepository is a Repository backed by PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a Repository over an existing connection pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the tables and identifier sequences if they do not exist.
func (p *PostgresRepository) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS transfer_id_seq START 1001`,
		`CREATE SEQUENCE IF NOT EXISTS recipient_id_seq START 1001`,
		`CREATE SEQUENCE IF NOT EXISTS schedule_id_seq START 1001`,
		`CREATE TABLE IF NOT EXISTS transfers (
			id TEXT PRIMARY KEY,
			provider_transfer_id TEXT,
			source_currency TEXT NOT NULL,
			target_currency TEXT NOT NULL,
			source_amount DOUBLE PRECISION NOT NULL,
			fee_amount DOUBLE PRECISION NOT NULL,
			net_amount DOUBLE PRECISION NOT NULL,
			exchange_rate DOUBLE PRECISION NOT NULL,
			target_amount DOUBLE PRECISION NOT NULL,
			recipient_name TEXT NOT NULL,
			recipient_country TEXT NOT NULL,
			delivery_time_label TEXT NOT NULL,
			status TEXT NOT NULL,
			estimated_arrival TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			is_real_transfer BOOLEAN NOT NULL,
			fallback_note TEXT,
			seq BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS recipients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			country TEXT NOT NULL,
			currency_code TEXT NOT NULL,
			total_sent DOUBLE PRECISION NOT NULL DEFAULT 0,
			transfer_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			seq BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS scheduled_transfers (
			id TEXT PRIMARY KEY,
			recipient_name TEXT NOT NULL,
			recipient_country TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			currency_from TEXT NOT NULL,
			currency_to TEXT NOT NULL,
			frequency TEXT NOT NULL,
			next_execution_at TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			execution_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			cancelled_at TIMESTAMPTZ,
			seq BIGSERIAL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresRepository) CreateTransfer(ctx context.Context, t *domain.Transfer) error {
	return p.db.QueryRow(ctx, `
		INSERT INTO transfers (
			id, provider_transfer_id, source_currency, target_currency, source_amount,
			fee_amount, net_amount, exchange_rate, target_amount, recipient_name,
			recipient_country, delivery_time_label, status, estimated_arrival,
			created_at, is_real_transfer, fallback_note
		) VALUES (
			'TRF-' || nextval('transfer_id_seq'), $1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16
		) RETURNING id`,
		t.ProviderTransferID, t.SourceCurrency, t.TargetCurrency, t.SourceAmount,
		t.FeeAmount, t.NetAmount, t.ExchangeRate, t.TargetAmount, t.RecipientName,
		t.RecipientCountry, t.DeliveryTimeLabel, t.Status, t.EstimatedArrival,
		t.CreatedAt, t.IsRealTransfer, t.FallbackNote,
	).Scan(&t.ID)
}

const transferColumns = `
	id, provider_transfer_id, source_currency, target_currency, source_amount,
	fee_amount, net_amount, exchange_rate, target_amount, recipient_name,
	recipient_country, delivery_time_label, status, estimated_arrival, created_at,
	is_real_transfer, fallback_note`

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	var t domain.Transfer
	err := row.Scan(
		&t.ID, &t.ProviderTransferID, &t.SourceCurrency, &t.TargetCurrency,
		&t.SourceAmount, &t.FeeAmount, &t.NetAmount, &t.ExchangeRate, &t.TargetAmount,
		&t.RecipientName, &t.RecipientCountry, &t.DeliveryTimeLabel, &t.Status,
		&t.EstimatedArrival, &t.CreatedAt, &t.IsRealTransfer, &t.FallbackNote,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *PostgresRepository) GetTransferByID(ctx context.Context, id string) (*domain.Transfer, error) {
	t, err := scanTransfer(p.db.QueryRow(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransferNotFound
	}
	return t, err
}

func (p *PostgresRepository) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+transferColumns+` FROM transfers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (p *PostgresRepository) AdvanceTransferStatus(ctx context.Context, id string, from, to domain.TransferStatus) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE transfers SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish missing from concurrently-moved for the caller.
		if _, getErr := p.GetTransferByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrTransferStatusChanged
	}
	return nil
}

func (p *PostgresRepository) CreateRecipient(ctx context.Context, r *domain.Recipient) error {
	return p.db.QueryRow(ctx, `
		INSERT INTO recipients (id, name, country, currency_code, total_sent, transfer_count, created_at)
		VALUES ('RCP-' || nextval('recipient_id_seq'), $1, $2, $3, $4, $5, $6)
		RETURNING id`,
		r.Name, r.Country, r.CurrencyCode, r.TotalSent, r.TransferCount, r.CreatedAt,
	).Scan(&r.ID)
}

func (p *PostgresRepository) GetRecipientByID(ctx context.Context, id string) (*domain.Recipient, error) {
	var r domain.Recipient
	err := p.db.QueryRow(ctx, `
		SELECT id, name, country, currency_code, total_sent, transfer_count, created_at
		FROM recipients WHERE id = $1`, id,
	).Scan(&r.ID, &r.Name, &r.Country, &r.CurrencyCode, &r.TotalSent, &r.TransferCount, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecipientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PostgresRepository) ListRecipients(ctx context.Context) ([]domain.Recipient, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, name, country, currency_code, total_sent, transfer_count, created_at
		FROM recipients ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Recipient
	for rows.Next() {
		var r domain.Recipient
		if err := rows.Scan(&r.ID, &r.Name, &r.Country, &r.CurrencyCode, &r.TotalSent, &r.TransferCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresRepository) DeleteRecipient(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM recipients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecipientNotFound
	}
	return nil
}

func (p *PostgresRepository) RecordRecipientTransfer(ctx context.Context, id string, amount float64) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE recipients
		SET total_sent = total_sent + $1, transfer_count = transfer_count + 1
		WHERE id = $2`, amount, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecipientNotFound
	}
	return nil
}

func (p *PostgresRepository) CreateSchedule(ctx context.Context, s *domain.ScheduledTransfer) error {
	return p.db.QueryRow(ctx, `
		INSERT INTO scheduled_transfers (
			id, recipient_name, recipient_country, amount, currency_from, currency_to,
			frequency, next_execution_at, status, execution_count, created_at, cancelled_at
		) VALUES (
			'SCH-' || nextval('schedule_id_seq'), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING id`,
		s.RecipientName, s.RecipientCountry, s.Amount, s.CurrencyFrom, s.CurrencyTo,
		s.Frequency, s.NextExecutionAt, s.Status, s.ExecutionCount, s.CreatedAt, s.CancelledAt,
	).Scan(&s.ID)
}

const scheduleColumns = `
	id, recipient_name, recipient_country, amount, currency_from, currency_to,
	frequency, next_execution_at, status, execution_count, created_at, cancelled_at`

func scanSchedule(row pgx.Row) (*domain.ScheduledTransfer, error) {
	var s domain.ScheduledTransfer
	err := row.Scan(
		&s.ID, &s.RecipientName, &s.RecipientCountry, &s.Amount, &s.CurrencyFrom,
		&s.CurrencyTo, &s.Frequency, &s.NextExecutionAt, &s.Status, &s.ExecutionCount,
		&s.CreatedAt, &s.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PostgresRepository) GetScheduleByID(ctx context.Context, id string) (*domain.ScheduledTransfer, error) {
	s, err := scanSchedule(p.db.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM scheduled_transfers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	return s, err
}

func (p *PostgresRepository) ListSchedules(ctx context.Context) ([]domain.ScheduledTransfer, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+scheduleColumns+` FROM scheduled_transfers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScheduledTransfer
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (p *PostgresRepository) CancelSchedule(ctx context.Context, id string, cancelledAt time.Time) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE scheduled_transfers
		SET status = $1, cancelled_at = $2
		WHERE id = $3 AND status = $4`,
		domain.ScheduleCancelled, cancelledAt, id, domain.ScheduleActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish missing from already-cancelled for the caller's error message.
		if _, getErr := p.GetScheduleByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrScheduleNotActive
	}
	return nil
}

func (p *PostgresRepository) AdvanceSchedule(ctx context.Context, id string, next time.Time) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE scheduled_transfers
		SET execution_count = execution_count + 1, next_execution_at = $1
		WHERE id = $2`, next, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
