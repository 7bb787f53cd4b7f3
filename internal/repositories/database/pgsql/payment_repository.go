package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	"github.com/carbonex/carbon_settlement_app/internal/models"
	"github.com/carbonex/carbon_settlement_app/internal/utils/mapping"
)

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for gateway top-up
// settlement.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const selectEntryByRef = `
	SELECT entry_id, wallet_id, entry_type, status, amount, external_ref, description, failure_reason, created_at
	FROM wallet_transactions
	WHERE external_ref = $1
`

// SavePendingTopup inserts the PENDING entry carrying the unique
// external reference.
func (r *PgxPaymentRepository) SavePendingTopup(ctx context.Context, entry domain.LedgerEntry) error {
	modelEntry := mapping.ToModelLedgerEntry(entry)

	var externalRef sql.NullString
	if modelEntry.ExternalRef != nil {
		externalRef = sql.NullString{String: *modelEntry.ExternalRef, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, insertLedgerEntry,
		modelEntry.EntryID,
		modelEntry.WalletID,
		modelEntry.Type,
		modelEntry.Status,
		modelEntry.Amount,
		externalRef,
		modelEntry.Description,
		modelEntry.FailureReason,
		modelEntry.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: external ref already registered", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save pending topup %s: %w", modelEntry.EntryID, err)
	}
	return nil
}

// FindEntryByExternalRef retrieves the ledger entry for a reference.
func (r *PgxPaymentRepository) FindEntryByExternalRef(ctx context.Context, externalRef string) (*domain.LedgerEntry, error) {
	modelEntry, err := r.scanEntry(ctx, r.Pool, selectEntryByRef+";", externalRef)
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainLedgerEntry(*modelEntry)
	return &entry, nil
}

// ConfirmTopup credits the wallet by the entry amount and marks the
// entry SUCCESS in one transaction. The PENDING check runs under a row
// lock, so a reference settles at most once no matter how many
// deliveries race.
func (r *PgxPaymentRepository) ConfirmTopup(ctx context.Context, externalRef string, description string) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	modelEntry, err := r.scanEntry(ctx, tx, selectEntryByRef+" FOR UPDATE;", externalRef)
	if err != nil {
		return false, err
	}
	if modelEntry.Status != models.EntryPending {
		return false, nil
	}

	if err := r.creditWallet(ctx, tx, modelEntry.WalletID, modelEntry.Amount); err != nil {
		return false, err
	}

	updateQuery := `
		UPDATE wallet_transactions
		SET status = $1, description = CASE WHEN $2 = '' THEN description ELSE description || ' - ' || $2 END
		WHERE entry_id = $3;
	`
	if _, err := tx.Exec(ctx, updateQuery, models.EntrySuccess, description, modelEntry.EntryID); err != nil {
		return false, fmt.Errorf("failed to mark topup %s successful: %w", externalRef, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

// FailTopup marks the entry FAILED with the given reason. The wallet is
// untouched.
func (r *PgxPaymentRepository) FailTopup(ctx context.Context, externalRef string, reason string) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	modelEntry, err := r.scanEntry(ctx, tx, selectEntryByRef+" FOR UPDATE;", externalRef)
	if err != nil {
		return false, err
	}
	if modelEntry.Status != models.EntryPending {
		return false, nil
	}

	updateQuery := `
		UPDATE wallet_transactions
		SET status = $1, failure_reason = $2
		WHERE entry_id = $3;
	`
	if _, err := tx.Exec(ctx, updateQuery, models.EntryFailed, reason, modelEntry.EntryID); err != nil {
		return false, fmt.Errorf("failed to mark topup %s failed: %w", externalRef, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

// rowQuerier covers both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PgxPaymentRepository) scanEntry(ctx context.Context, q rowQuerier, query string, externalRef string) (*models.LedgerEntry, error) {
	var modelEntry models.LedgerEntry
	var refCol sql.NullString
	err := q.QueryRow(ctx, query, externalRef).Scan(
		&modelEntry.EntryID,
		&modelEntry.WalletID,
		&modelEntry.Type,
		&modelEntry.Status,
		&modelEntry.Amount,
		&refCol,
		&modelEntry.Description,
		&modelEntry.FailureReason,
		&modelEntry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: external ref %s", apperrors.ErrNotFound, externalRef)
		}
		return nil, fmt.Errorf("failed to find entry for external ref %s: %w", externalRef, err)
	}
	if refCol.Valid {
		modelEntry.ExternalRef = &refCol.String
	}
	return &modelEntry, nil
}

func (r *PgxPaymentRepository) creditWallet(ctx context.Context, tx pgx.Tx, walletID string, amount decimal.Decimal) error {
	updateQuery := `
		UPDATE wallets
		SET balance = balance + $1, version = version + 1, last_updated_at = $2
		WHERE wallet_id = $3;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery, amount, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to credit wallet %s: %w", walletID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: wallet %s", apperrors.ErrWalletNotFound, walletID)
	}
	return nil
}
