package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/middleware"
)

// tradeService drives the trade lifecycle PENDING → COMPLETED|CANCELLED
// and keeps the listing's availability flag in lockstep. The listing
// reservation is the sole admission-control gate against double-selling.
type tradeService struct {
	tradeRepo   portsrepo.TradeRepositoryFacade
	listingRepo portsrepo.ListingRepositoryFacade
	walletSvc   portssvc.WalletSvcFacade
}

// NewTradeService creates the trade state machine service.
func NewTradeService(tradeRepo portsrepo.TradeRepositoryFacade, listingRepo portsrepo.ListingRepositoryFacade, walletSvc portssvc.WalletSvcFacade) portssvc.TradeSvcFacade {
	return &tradeService{
		tradeRepo:   tradeRepo,
		listingRepo: listingRepo,
		walletSvc:   walletSvc,
	}
}

var _ portssvc.TradeSvcFacade = (*tradeService)(nil)

// CreateTrade validates the purchase and reserves the listing. The
// balance check here is optimistic; the authoritative check happens
// again inside the settlement transaction.
func (s *tradeService) CreateTrade(ctx context.Context, listingID string, buyerID string) (*domain.Trade, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	listing, err := s.listingRepo.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing %s: %w", listingID, err)
	}

	if listing.Status != domain.ListingOpen {
		return nil, fmt.Errorf("%w: listing %s is %s", apperrors.ErrListingUnavailable, listingID, listing.Status)
	}
	if buyerID == listing.SellerID {
		return nil, apperrors.ErrSelfTradeForbidden
	}

	balance, err := s.walletSvc.GetBalance(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check buyer balance: %w", err)
	}
	if balance.LessThan(listing.Price) {
		return nil, fmt.Errorf("%w: balance %s, price %s", apperrors.ErrInsufficientBalance, balance.String(), listing.Price.String())
	}

	trade := domain.Trade{
		TradeID:   uuid.NewString(),
		BuyerID:   buyerID,
		SellerID:  listing.SellerID,
		ListingID: listing.ListingID,
		Amount:    listing.Price,
		Status:    domain.TradePending,
		CreatedAt: time.Now().UTC(),
	}

	// Reservation and trade insert commit together; a concurrent buyer
	// loses the conditional update and gets ErrListingUnavailable.
	if err := s.tradeRepo.SaveTradeReservingListing(ctx, trade); err != nil {
		if errors.Is(err, apperrors.ErrListingUnavailable) {
			logger.Warn("Listing reservation lost", slog.String("listing_id", listingID), slog.String("buyer_id", buyerID))
		}
		return nil, err
	}

	logger.Info("Trade created",
		slog.String("trade_id", trade.TradeID),
		slog.String("listing_id", listingID),
		slog.String("buyer_id", buyerID),
	)
	return &trade, nil
}

// ConfirmTrade settles a PENDING trade in one storage transaction:
// money buyer→seller, credit lot seller→buyer, trade COMPLETED, listing
// SOLD. Repeated confirms are a hard error, not a no-op.
func (s *tradeService) ConfirmTrade(ctx context.Context, tradeID string) (*domain.Trade, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	trade, err := s.tradeRepo.FindTradeByID(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find trade %s: %w", tradeID, err)
	}
	if trade.Status != domain.TradePending {
		return nil, fmt.Errorf("%w: trade %s is %s, expected PENDING", apperrors.ErrInvalidState, tradeID, trade.Status)
	}

	listing, err := s.listingRepo.FindListingByID(ctx, trade.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing %s: %w", trade.ListingID, err)
	}

	now := time.Now().UTC()
	debitEntry := domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		Type:        domain.EntryPurchase,
		Status:      domain.EntrySuccess,
		Amount:      trade.Amount,
		Description: "Purchase of listing: " + listing.Title,
		CreatedAt:   now,
	}
	creditEntry := domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		Type:        domain.EntrySaleProceeds,
		Status:      domain.EntrySuccess,
		Amount:      trade.Amount,
		Description: "Sale of listing: " + listing.Title,
		CreatedAt:   now,
	}

	var settleErr error
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		settleErr = s.tradeRepo.SettleTrade(ctx, *trade, *listing, debitEntry, creditEntry, now)
		if settleErr == nil || !errors.Is(settleErr, apperrors.ErrConcurrentModification) {
			break
		}
	}
	if settleErr != nil {
		logger.Error("Trade settlement failed", slog.String("trade_id", tradeID), slog.String("error", settleErr.Error()))
		return nil, settleErr
	}

	trade.Status = domain.TradeCompleted
	trade.SettledAt = &now

	logger.Info("Trade settled",
		slog.String("trade_id", tradeID),
		slog.String("listing_id", listing.ListingID),
		slog.String("amount", trade.Amount.String()),
	)
	return trade, nil
}

// CancelTrade releases the reservation. Funds were never moved at
// creation time, so there is no ledger effect.
func (s *tradeService) CancelTrade(ctx context.Context, tradeID string) (*domain.Trade, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	trade, err := s.tradeRepo.FindTradeByID(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find trade %s: %w", tradeID, err)
	}
	if trade.Status != domain.TradePending {
		return nil, fmt.Errorf("%w: trade %s is %s, expected PENDING", apperrors.ErrInvalidState, tradeID, trade.Status)
	}

	if err := s.tradeRepo.CancelTrade(ctx, trade.TradeID, trade.ListingID); err != nil {
		return nil, err
	}

	trade.Status = domain.TradeCancelled
	logger.Info("Trade cancelled", slog.String("trade_id", tradeID), slog.String("listing_id", trade.ListingID))
	return trade, nil
}

func (s *tradeService) GetTrade(ctx context.Context, tradeID string) (*domain.Trade, error) {
	return s.tradeRepo.FindTradeByID(ctx, tradeID)
}

func (s *tradeService) ListTradesByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Trade, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.tradeRepo.ListTradesByBuyer(ctx, buyerID, limit)
}

func (s *tradeService) ListTradesBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Trade, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.tradeRepo.ListTradesBySeller(ctx, sellerID, limit)
}

func (s *tradeService) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	return s.listingRepo.FindListingByID(ctx, listingID)
}

func (s *tradeService) ListListingsBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Listing, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.listingRepo.ListListingsBySeller(ctx, sellerID, limit)
}
