package services

import (
	"context"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
)

// TradeSvcFacade is the trade state machine surface of the settlement API.
type TradeSvcFacade interface {
	// CreateTrade reserves the listing and creates a PENDING trade; the
	// two writes commit together or not at all.
	CreateTrade(ctx context.Context, listingID string, buyerID string) (*domain.Trade, error)

	// ConfirmTrade settles a PENDING trade: money moves buyer→seller,
	// the listing's credit lot moves seller→buyer, trade→COMPLETED and
	// listing→SOLD, all atomically. A non-PENDING trade is a hard
	// apperrors.ErrInvalidState.
	ConfirmTrade(ctx context.Context, tradeID string) (*domain.Trade, error)

	// CancelTrade releases the reservation of a PENDING trade.
	CancelTrade(ctx context.Context, tradeID string) (*domain.Trade, error)

	GetTrade(ctx context.Context, tradeID string) (*domain.Trade, error)
	ListTradesByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Trade, error)
	ListTradesBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Trade, error)

	GetListing(ctx context.Context, listingID string) (*domain.Listing, error)
	ListListingsBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Listing, error)
}
