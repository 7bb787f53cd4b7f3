package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	"github.com/carbonex/carbon_settlement_app/internal/models"
	"github.com/carbonex/carbon_settlement_app/internal/utils/mapping"
)

type PgxTradeRepository struct {
	BaseRepository
}

// newPgxTradeRepository creates a new repository for trades and their
// settlement.
func newPgxTradeRepository(pool *pgxpool.Pool) portsrepo.TradeRepositoryFacade {
	return &PgxTradeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TradeRepositoryFacade = (*PgxTradeRepository)(nil)

const selectTradeColumns = `
	SELECT trade_id, buyer_id, seller_id, listing_id, amount, status, created_at, settled_at
	FROM trades
`

// SaveTradeReservingListing inserts the PENDING trade and flips the
// listing OPEN to RESERVED in one transaction. The conditional update
// is the whole reservation race: losing it fails everything with
// apperrors.ErrListingUnavailable.
func (r *PgxTradeRepository) SaveTradeReservingListing(ctx context.Context, trade domain.Trade) error {
	modelTrade := mapping.ToModelTrade(trade)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	reserveQuery := `
		UPDATE listings
		SET status = $1
		WHERE listing_id = $2 AND status = $3;
	`
	cmdTag, err := tx.Exec(ctx, reserveQuery, models.ListingReserved, modelTrade.ListingID, models.ListingOpen)
	if err != nil {
		return fmt.Errorf("failed to reserve listing %s: %w", modelTrade.ListingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: listing %s", apperrors.ErrListingUnavailable, modelTrade.ListingID)
	}

	insertQuery := `
		INSERT INTO trades (trade_id, buyer_id, seller_id, listing_id, amount, status, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	var settledAt sql.NullTime
	if modelTrade.SettledAt != nil {
		settledAt = sql.NullTime{Time: *modelTrade.SettledAt, Valid: true}
	}
	_, err = tx.Exec(ctx, insertQuery,
		modelTrade.TradeID,
		modelTrade.BuyerID,
		modelTrade.SellerID,
		modelTrade.ListingID,
		modelTrade.Amount,
		modelTrade.Status,
		modelTrade.CreatedAt,
		settledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade %s: %w", modelTrade.TradeID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTradeByID retrieves a trade by its ID.
func (r *PgxTradeRepository) FindTradeByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	query := selectTradeColumns + " WHERE trade_id = $1;"

	var modelTrade models.Trade
	var settledAt sql.NullTime
	err := r.Pool.QueryRow(ctx, query, tradeID).Scan(
		&modelTrade.TradeID,
		&modelTrade.BuyerID,
		&modelTrade.SellerID,
		&modelTrade.ListingID,
		&modelTrade.Amount,
		&modelTrade.Status,
		&modelTrade.CreatedAt,
		&settledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: trade %s", apperrors.ErrNotFound, tradeID)
		}
		return nil, fmt.Errorf("failed to find trade %s: %w", tradeID, err)
	}
	if settledAt.Valid {
		modelTrade.SettledAt = &settledAt.Time
	}

	trade := mapping.ToDomainTrade(modelTrade)
	return &trade, nil
}

// ListTradesByBuyer returns the buyer's most recent trades.
func (r *PgxTradeRepository) ListTradesByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Trade, error) {
	return r.listTrades(ctx, selectTradeColumns+" WHERE buyer_id = $1 ORDER BY created_at DESC LIMIT $2;", buyerID, limit)
}

// ListTradesBySeller returns the seller's most recent trades.
func (r *PgxTradeRepository) ListTradesBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Trade, error) {
	return r.listTrades(ctx, selectTradeColumns+" WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2;", sellerID, limit)
}

func (r *PgxTradeRepository) listTrades(ctx context.Context, query string, partyID string, limit int) ([]domain.Trade, error) {
	rows, err := r.Pool.Query(ctx, query, partyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades for %s: %w", partyID, err)
	}

	modelTrades, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Trade, error) {
		var t models.Trade
		var settledAt sql.NullTime
		err := row.Scan(&t.TradeID, &t.BuyerID, &t.SellerID, &t.ListingID, &t.Amount, &t.Status, &t.CreatedAt, &settledAt)
		if settledAt.Valid {
			t.SettledAt = &settledAt.Time
		}
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan trades for %s: %w", partyID, err)
	}

	return mapping.ToDomainTradeSlice(modelTrades), nil
}

// SettleTrade performs the whole confirm step as one transaction: the
// trade goes PENDING to COMPLETED, the buyer pays, the seller is paid,
// the listing's credit lot moves to the buyer, and the listing is
// marked SOLD. A failure anywhere rolls back everything.
func (r *PgxTradeRepository) SettleTrade(ctx context.Context, trade domain.Trade, listing domain.Listing, debitEntry domain.LedgerEntry, creditEntry domain.LedgerEntry, settledAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	completeQuery := `
		UPDATE trades
		SET status = $1, settled_at = $2
		WHERE trade_id = $3 AND status = $4;
	`
	cmdTag, err := tx.Exec(ctx, completeQuery, models.TradeCompleted, settledAt, trade.TradeID, models.TradePending)
	if err != nil {
		return fmt.Errorf("failed to complete trade %s: %w", trade.TradeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: trade %s is not pending", apperrors.ErrInvalidState, trade.TradeID)
	}

	if err := r.moveMoney(ctx, tx, trade, debitEntry, creditEntry); err != nil {
		return err
	}

	carbonWalletIDs, err := lockCarbonWalletsForUpdate(ctx, tx, trade.SellerID, trade.BuyerID)
	if err != nil {
		return err
	}
	if err := removeHoldingInTx(ctx, tx, carbonWalletIDs[trade.SellerID], listing.CreditLotID, listing.CarbonAmount); err != nil {
		return err
	}
	if err := addHoldingInTx(ctx, tx, carbonWalletIDs[trade.BuyerID], listing.CreditLotID, listing.CarbonAmount); err != nil {
		return err
	}

	soldQuery := `
		UPDATE listings
		SET status = $1
		WHERE listing_id = $2 AND status = $3;
	`
	cmdTag, err = tx.Exec(ctx, soldQuery, models.ListingSold, listing.ListingID, models.ListingReserved)
	if err != nil {
		return fmt.Errorf("failed to mark listing %s sold: %w", listing.ListingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: listing %s is not reserved", apperrors.ErrInvalidState, listing.ListingID)
	}

	return r.Commit(ctx, tx)
}

// moveMoney debits the buyer and credits the seller under the wallets'
// optimistic versions, inserting both ledger entries.
func (r *PgxTradeRepository) moveMoney(ctx context.Context, tx pgx.Tx, trade domain.Trade, debitEntry domain.LedgerEntry, creditEntry domain.LedgerEntry) error {
	lockQuery := `
		SELECT wallet_id, owner_id, balance, version
		FROM wallets
		WHERE owner_id = ANY($1)
		ORDER BY wallet_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, lockQuery, []string{trade.BuyerID, trade.SellerID})
	if err != nil {
		return fmt.Errorf("failed to lock wallets for trade %s: %w", trade.TradeID, err)
	}
	defer rows.Close()

	wallets := make(map[string]models.Wallet, 2)
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.WalletID, &w.OwnerID, &w.Balance, &w.Version); err != nil {
			return fmt.Errorf("failed to scan locked wallet: %w", err)
		}
		wallets[w.OwnerID] = w
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed reading locked wallets: %w", err)
	}
	for _, ownerID := range []string{trade.BuyerID, trade.SellerID} {
		if _, ok := wallets[ownerID]; !ok {
			return fmt.Errorf("%w: wallet for owner %s", apperrors.ErrWalletNotFound, ownerID)
		}
	}

	buyerWallet := wallets[trade.BuyerID]
	if buyerWallet.Balance.LessThan(trade.Amount) {
		return fmt.Errorf("%w: buyer %s has %s, trade is %s",
			apperrors.ErrInsufficientBalance, trade.BuyerID, buyerWallet.Balance.String(), trade.Amount.String())
	}
	sellerWallet := wallets[trade.SellerID]

	now := time.Now().UTC()
	updateQuery := `
		UPDATE wallets
		SET balance = $1, version = version + 1, last_updated_at = $2
		WHERE wallet_id = $3 AND version = $4;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery, buyerWallet.Balance.Sub(trade.Amount), now, buyerWallet.WalletID, buyerWallet.Version)
	if err != nil {
		return fmt.Errorf("failed to debit buyer wallet %s: %w", buyerWallet.WalletID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: wallet %s", apperrors.ErrConcurrentModification, buyerWallet.WalletID)
	}

	cmdTag, err = tx.Exec(ctx, updateQuery, sellerWallet.Balance.Add(trade.Amount), now, sellerWallet.WalletID, sellerWallet.Version)
	if err != nil {
		return fmt.Errorf("failed to credit seller wallet %s: %w", sellerWallet.WalletID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: wallet %s", apperrors.ErrConcurrentModification, sellerWallet.WalletID)
	}

	batch := &pgx.Batch{}
	for _, pair := range []struct {
		entry    domain.LedgerEntry
		walletID string
	}{
		{debitEntry, buyerWallet.WalletID},
		{creditEntry, sellerWallet.WalletID},
	} {
		modelEntry := mapping.ToModelLedgerEntry(pair.entry)
		modelEntry.WalletID = pair.walletID
		var externalRef sql.NullString
		if modelEntry.ExternalRef != nil {
			externalRef = sql.NullString{String: *modelEntry.ExternalRef, Valid: true}
		}
		batch.Queue(insertLedgerEntry,
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
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert settlement entries for trade %s: %w", trade.TradeID, err)
	}

	return nil
}

// CancelTrade flips the trade back out of PENDING and releases the
// listing in one transaction. No ledger effect.
func (r *PgxTradeRepository) CancelTrade(ctx context.Context, tradeID string, listingID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	cancelQuery := `
		UPDATE trades
		SET status = $1
		WHERE trade_id = $2 AND status = $3;
	`
	cmdTag, err := tx.Exec(ctx, cancelQuery, models.TradeCancelled, tradeID, models.TradePending)
	if err != nil {
		return fmt.Errorf("failed to cancel trade %s: %w", tradeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: trade %s is not pending", apperrors.ErrInvalidState, tradeID)
	}

	releaseQuery := `
		UPDATE listings
		SET status = $1
		WHERE listing_id = $2 AND status = $3;
	`
	cmdTag, err = tx.Exec(ctx, releaseQuery, models.ListingOpen, listingID, models.ListingReserved)
	if err != nil {
		return fmt.Errorf("failed to release listing %s: %w", listingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: listing %s is not reserved", apperrors.ErrInvalidState, listingID)
	}

	return r.Commit(ctx, tx)
}
