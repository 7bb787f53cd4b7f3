package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	"github.com/carbonex/carbon_settlement_app/internal/models"
	"github.com/carbonex/carbon_settlement_app/internal/utils/mapping"
)

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for money wallets and
// their transaction log.
func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryFacade {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WalletRepositoryFacade = (*PgxWalletRepository)(nil)

const selectWalletByOwner = `
	SELECT wallet_id, owner_id, balance, version, created_at, created_by, last_updated_at, last_updated_by
	FROM wallets
	WHERE owner_id = $1;
`

const insertLedgerEntry = `
	INSERT INTO wallet_transactions (entry_id, wallet_id, entry_type, status, amount, external_ref, description, failure_reason, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

// SaveWalletPair creates the money wallet and carbon wallet for an
// account in one transaction.
func (r *PgxWalletRepository) SaveWalletPair(ctx context.Context, wallet domain.Wallet, carbonWallet domain.CarbonWallet) error {
	modelWallet := mapping.ToModelWallet(wallet)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	walletQuery := `
		INSERT INTO wallets (wallet_id, owner_id, balance, version, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, walletQuery,
		modelWallet.WalletID,
		modelWallet.OwnerID,
		modelWallet.Balance,
		modelWallet.Version,
		modelWallet.CreatedAt,
		modelWallet.CreatedBy,
		modelWallet.LastUpdatedAt,
		modelWallet.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: wallet for owner %s already exists", apperrors.ErrDuplicate, wallet.OwnerID)
		}
		return fmt.Errorf("failed to save wallet %s: %w", modelWallet.WalletID, err)
	}

	carbonQuery := `
		INSERT INTO carbon_wallets (carbon_wallet_id, owner_id, balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, carbonQuery,
		carbonWallet.CarbonWalletID,
		carbonWallet.OwnerID,
		carbonWallet.Balance,
		carbonWallet.CreatedAt,
		carbonWallet.CreatedBy,
		carbonWallet.LastUpdatedAt,
		carbonWallet.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: carbon wallet for owner %s already exists", apperrors.ErrDuplicate, carbonWallet.OwnerID)
		}
		return fmt.Errorf("failed to save carbon wallet %s: %w", carbonWallet.CarbonWalletID, err)
	}

	return r.Commit(ctx, tx)
}

// FindWalletByOwnerID retrieves a wallet by its owner.
func (r *PgxWalletRepository) FindWalletByOwnerID(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	var modelWallet models.Wallet
	err := r.Pool.QueryRow(ctx, selectWalletByOwner, ownerID).Scan(
		&modelWallet.WalletID,
		&modelWallet.OwnerID,
		&modelWallet.Balance,
		&modelWallet.Version,
		&modelWallet.CreatedAt,
		&modelWallet.CreatedBy,
		&modelWallet.LastUpdatedAt,
		&modelWallet.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: wallet for owner %s", apperrors.ErrWalletNotFound, ownerID)
		}
		return nil, fmt.Errorf("failed to find wallet for owner %s: %w", ownerID, err)
	}

	wallet := mapping.ToDomainWallet(modelWallet)
	return &wallet, nil
}

// ApplyBalanceChanges applies every change and inserts its ledger entry
// in a single transaction. Each wallet write is guarded by the wallet's
// version column; a mismatch aborts the whole batch with
// apperrors.ErrConcurrentModification so the caller can retry.
func (r *PgxWalletRepository) ApplyBalanceChanges(ctx context.Context, changes []portsrepo.BalanceChange) error {
	if len(changes) == 0 {
		return nil
	}

	// Deterministic wallet order keeps concurrent batches from
	// deadlocking each other.
	sorted := make([]portsrepo.BalanceChange, len(changes))
	copy(sorted, changes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OwnerID < sorted[j].OwnerID
	})

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := time.Now().UTC()
	for _, change := range sorted {
		var modelWallet models.Wallet
		err := tx.QueryRow(ctx, selectWalletByOwner, change.OwnerID).Scan(
			&modelWallet.WalletID,
			&modelWallet.OwnerID,
			&modelWallet.Balance,
			&modelWallet.Version,
			&modelWallet.CreatedAt,
			&modelWallet.CreatedBy,
			&modelWallet.LastUpdatedAt,
			&modelWallet.LastUpdatedBy,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: wallet for owner %s", apperrors.ErrWalletNotFound, change.OwnerID)
			}
			return fmt.Errorf("failed to load wallet for owner %s: %w", change.OwnerID, err)
		}

		newBalance := modelWallet.Balance.Add(change.Delta)
		if newBalance.IsNegative() {
			return fmt.Errorf("%w: owner %s has %s, change is %s",
				apperrors.ErrInsufficientBalance, change.OwnerID, modelWallet.Balance.String(), change.Delta.String())
		}

		updateQuery := `
			UPDATE wallets
			SET balance = $1, version = version + 1, last_updated_at = $2
			WHERE wallet_id = $3 AND version = $4;
		`
		cmdTag, err := tx.Exec(ctx, updateQuery, newBalance, now, modelWallet.WalletID, modelWallet.Version)
		if err != nil {
			return fmt.Errorf("failed to update wallet %s: %w", modelWallet.WalletID, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: wallet %s", apperrors.ErrConcurrentModification, modelWallet.WalletID)
		}

		modelEntry := mapping.ToModelLedgerEntry(change.Entry)
		modelEntry.WalletID = modelWallet.WalletID
		var externalRef sql.NullString
		if modelEntry.ExternalRef != nil {
			externalRef = sql.NullString{String: *modelEntry.ExternalRef, Valid: true}
		}
		_, err = tx.Exec(ctx, insertLedgerEntry,
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
				return fmt.Errorf("%w: external ref already recorded", apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert ledger entry %s: %w", modelEntry.EntryID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// ListEntriesByOwner returns the owner's most recent ledger entries.
func (r *PgxWalletRepository) ListEntriesByOwner(ctx context.Context, ownerID string, limit int) ([]domain.LedgerEntry, error) {
	query := `
		SELECT t.entry_id, t.wallet_id, t.entry_type, t.status, t.amount, t.external_ref, t.description, t.failure_reason, t.created_at
		FROM wallet_transactions t
		JOIN wallets w ON w.wallet_id = t.wallet_id
		WHERE w.owner_id = $1
		ORDER BY t.created_at DESC, t.entry_id DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for owner %s: %w", ownerID, err)
	}

	modelEntries, err := pgx.CollectRows(rows, scanLedgerEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entries for owner %s: %w", ownerID, err)
	}

	return mapping.ToDomainLedgerEntrySlice(modelEntries), nil
}

// scanLedgerEntry scans one wallet_transactions row. Column order must
// match the SELECT lists using it.
func scanLedgerEntry(row pgx.CollectableRow) (models.LedgerEntry, error) {
	var entry models.LedgerEntry
	var externalRef sql.NullString
	err := row.Scan(
		&entry.EntryID,
		&entry.WalletID,
		&entry.Type,
		&entry.Status,
		&entry.Amount,
		&externalRef,
		&entry.Description,
		&entry.FailureReason,
		&entry.CreatedAt,
	)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	if externalRef.Valid {
		entry.ExternalRef = &externalRef.String
	}
	return entry, nil
}
