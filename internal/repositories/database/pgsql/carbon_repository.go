package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	"github.com/carbonex/carbon_settlement_app/internal/models"
	"github.com/carbonex/carbon_settlement_app/internal/utils/mapping"
	"github.com/google/uuid"
)

type PgxCarbonRepository struct {
	BaseRepository
}

// newPgxCarbonRepository creates a new repository for carbon wallets
// and per-lot holdings.
func newPgxCarbonRepository(pool *pgxpool.Pool) portsrepo.CarbonRepositoryFacade {
	return &PgxCarbonRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CarbonRepositoryFacade = (*PgxCarbonRepository)(nil)

// FindCarbonWalletByOwnerID retrieves a carbon wallet by its owner.
func (r *PgxCarbonRepository) FindCarbonWalletByOwnerID(ctx context.Context, ownerID string) (*domain.CarbonWallet, error) {
	query := `
		SELECT carbon_wallet_id, owner_id, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM carbon_wallets
		WHERE owner_id = $1;
	`
	var modelWallet models.CarbonWallet
	err := r.Pool.QueryRow(ctx, query, ownerID).Scan(
		&modelWallet.CarbonWalletID,
		&modelWallet.OwnerID,
		&modelWallet.Balance,
		&modelWallet.CreatedAt,
		&modelWallet.CreatedBy,
		&modelWallet.LastUpdatedAt,
		&modelWallet.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: carbon wallet for owner %s", apperrors.ErrWalletNotFound, ownerID)
		}
		return nil, fmt.Errorf("failed to find carbon wallet for owner %s: %w", ownerID, err)
	}

	wallet := mapping.ToDomainCarbonWallet(modelWallet)
	return &wallet, nil
}

// ListHoldingsByOwner returns all lots held by an owner.
func (r *PgxCarbonRepository) ListHoldingsByOwner(ctx context.Context, ownerID string) ([]domain.CarbonHolding, error) {
	query := `
		SELECT h.holding_id, h.carbon_wallet_id, h.credit_lot_id, h.quantity, h.created_at, h.last_updated_at
		FROM carbon_holdings h
		JOIN carbon_wallets w ON w.carbon_wallet_id = h.carbon_wallet_id
		WHERE w.owner_id = $1
		ORDER BY h.credit_lot_id;
	`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings for owner %s: %w", ownerID, err)
	}

	modelHoldings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CarbonHolding, error) {
		var h models.CarbonHolding
		err := row.Scan(&h.HoldingID, &h.CarbonWalletID, &h.CreditLotID, &h.Quantity, &h.CreatedAt, &h.LastUpdatedAt)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan holdings for owner %s: %w", ownerID, err)
	}

	return mapping.ToDomainCarbonHoldingSlice(modelHoldings), nil
}

// AddHolding upserts the (wallet, lot) row and bumps the aggregate
// balance in one transaction.
func (r *PgxCarbonRepository) AddHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	walletIDs, err := lockCarbonWalletsForUpdate(ctx, tx, ownerID)
	if err != nil {
		return err
	}

	if err := addHoldingInTx(ctx, tx, walletIDs[ownerID], creditLotID, qty); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// RemoveHolding decrements the (wallet, lot) row, deleting it at zero,
// and lowers the aggregate balance in one transaction.
func (r *PgxCarbonRepository) RemoveHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	walletIDs, err := lockCarbonWalletsForUpdate(ctx, tx, ownerID)
	if err != nil {
		return err
	}

	if err := removeHoldingInTx(ctx, tx, walletIDs[ownerID], creditLotID, qty); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// TransferHolding moves qty of a lot between owners in one transaction.
func (r *PgxCarbonRepository) TransferHolding(ctx context.Context, fromOwnerID string, toOwnerID string, creditLotID string, qty decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	walletIDs, err := lockCarbonWalletsForUpdate(ctx, tx, fromOwnerID, toOwnerID)
	if err != nil {
		return err
	}

	if err := removeHoldingInTx(ctx, tx, walletIDs[fromOwnerID], creditLotID, qty); err != nil {
		return err
	}
	if err := addHoldingInTx(ctx, tx, walletIDs[toOwnerID], creditLotID, qty); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// lockCarbonWalletsForUpdate locks the owners' carbon wallet rows in
// ascending wallet-id order and returns owner -> wallet id. A missing
// owner yields apperrors.ErrWalletNotFound.
func lockCarbonWalletsForUpdate(ctx context.Context, tx pgx.Tx, ownerIDs ...string) (map[string]string, error) {
	query := `
		SELECT carbon_wallet_id, owner_id
		FROM carbon_wallets
		WHERE owner_id = ANY($1)
		ORDER BY carbon_wallet_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock carbon wallets: %w", err)
	}
	defer rows.Close()

	walletIDs := make(map[string]string, len(ownerIDs))
	for rows.Next() {
		var walletID, ownerID string
		if err := rows.Scan(&walletID, &ownerID); err != nil {
			return nil, fmt.Errorf("failed to scan locked carbon wallet: %w", err)
		}
		walletIDs[ownerID] = walletID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading locked carbon wallets: %w", err)
	}

	for _, ownerID := range ownerIDs {
		if _, ok := walletIDs[ownerID]; !ok {
			return nil, fmt.Errorf("%w: carbon wallet for owner %s", apperrors.ErrWalletNotFound, ownerID)
		}
	}
	return walletIDs, nil
}

// addHoldingInTx upserts the holding row and raises the wallet's
// aggregate balance. The caller must hold the wallet's row lock.
func addHoldingInTx(ctx context.Context, tx pgx.Tx, carbonWalletID string, creditLotID string, qty decimal.Decimal) error {
	now := time.Now().UTC()

	upsertQuery := `
		INSERT INTO carbon_holdings (holding_id, carbon_wallet_id, credit_lot_id, quantity, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (carbon_wallet_id, credit_lot_id)
		DO UPDATE SET quantity = carbon_holdings.quantity + EXCLUDED.quantity, last_updated_at = EXCLUDED.last_updated_at;
	`
	if _, err := tx.Exec(ctx, upsertQuery, uuid.NewString(), carbonWalletID, creditLotID, qty, now); err != nil {
		return fmt.Errorf("failed to add holding of lot %s: %w", creditLotID, err)
	}

	aggregateQuery := `
		UPDATE carbon_wallets
		SET balance = balance + $1, last_updated_at = $2
		WHERE carbon_wallet_id = $3;
	`
	if _, err := tx.Exec(ctx, aggregateQuery, qty, now, carbonWalletID); err != nil {
		return fmt.Errorf("failed to raise carbon balance of wallet %s: %w", carbonWalletID, err)
	}
	return nil
}

// removeHoldingInTx decrements the holding row, deletes it at zero and
// lowers the wallet's aggregate balance. The caller must hold the
// wallet's row lock.
func removeHoldingInTx(ctx context.Context, tx pgx.Tx, carbonWalletID string, creditLotID string, qty decimal.Decimal) error {
	now := time.Now().UTC()

	decrementQuery := `
		UPDATE carbon_holdings
		SET quantity = quantity - $1, last_updated_at = $2
		WHERE carbon_wallet_id = $3 AND credit_lot_id = $4 AND quantity >= $1;
	`
	cmdTag, err := tx.Exec(ctx, decrementQuery, qty, now, carbonWalletID, creditLotID)
	if err != nil {
		return fmt.Errorf("failed to remove holding of lot %s: %w", creditLotID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: lot %s in wallet %s", apperrors.ErrInsufficientHoldings, creditLotID, carbonWalletID)
	}

	deleteQuery := `
		DELETE FROM carbon_holdings
		WHERE carbon_wallet_id = $1 AND credit_lot_id = $2 AND quantity = 0;
	`
	if _, err := tx.Exec(ctx, deleteQuery, carbonWalletID, creditLotID); err != nil {
		return fmt.Errorf("failed to prune empty holding of lot %s: %w", creditLotID, err)
	}

	aggregateQuery := `
		UPDATE carbon_wallets
		SET balance = balance - $1, last_updated_at = $2
		WHERE carbon_wallet_id = $3;
	`
	if _, err := tx.Exec(ctx, aggregateQuery, qty, now, carbonWalletID); err != nil {
		return fmt.Errorf("failed to lower carbon balance of wallet %s: %w", carbonWalletID, err)
	}
	return nil
}
