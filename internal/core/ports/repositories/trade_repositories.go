package repositories

import (
	"context"
	"time"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
)

// TradeRepositoryFacade is the persistence port for trades and the
// listing availability flag they drive.
type TradeRepositoryFacade interface {
	// SaveTradeReservingListing inserts the PENDING trade and flips the
	// listing OPEN→RESERVED in one transaction. The reservation is a
	// single conditional update; if the listing is not OPEN the whole
	// operation fails with apperrors.ErrListingUnavailable.
	SaveTradeReservingListing(ctx context.Context, trade domain.Trade) error

	FindTradeByID(ctx context.Context, tradeID string) (*domain.Trade, error)
	ListTradesByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Trade, error)
	ListTradesBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Trade, error)

	// SettleTrade performs the whole confirm step as one transaction:
	// trade PENDING→COMPLETED (conditional update; 0 rows yields
	// apperrors.ErrInvalidState), buyer wallet debited and seller wallet
	// credited with the two ledger entries, the listing's credit lot
	// moved from seller to buyer, and the listing marked SOLD. A failure
	// anywhere rolls back everything.
	SettleTrade(ctx context.Context, trade domain.Trade, listing domain.Listing, debitEntry domain.LedgerEntry, creditEntry domain.LedgerEntry, settledAt time.Time) error

	// CancelTrade flips the trade PENDING→CANCELLED and releases the
	// listing back to OPEN in one transaction. No ledger effect.
	CancelTrade(ctx context.Context, tradeID string, listingID string) error
}

// ListingRepositoryFacade is the read/write collaborator port for
// listings outside the trade-driven status flips.
type ListingRepositoryFacade interface {
	FindListingByID(ctx context.Context, listingID string) (*domain.Listing, error)
	ListListingsBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Listing, error)
}
