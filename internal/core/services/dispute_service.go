package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/middleware"
)

// disputeService manages the post-trade complaint overlay. Disputes are
// annotations on completed trades; resolving one records an outcome but
// any compensating payment is issued separately through the wallet API.
type disputeService struct {
	disputeRepo portsrepo.DisputeRepositoryFacade
	tradeRepo   portsrepo.TradeRepositoryFacade
}

// NewDisputeService creates a dispute service.
func NewDisputeService(disputeRepo portsrepo.DisputeRepositoryFacade, tradeRepo portsrepo.TradeRepositoryFacade) portssvc.DisputeSvcFacade {
	return &disputeService{disputeRepo: disputeRepo, tradeRepo: tradeRepo}
}

var _ portssvc.DisputeSvcFacade = (*disputeService)(nil)

// OpenDispute attaches a new OPEN dispute to a completed trade. A trade
// carries at most one active dispute at a time.
func (s *disputeService) OpenDispute(ctx context.Context, req portssvc.OpenDisputeRequest) (*domain.Dispute, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: dispute reason is required", apperrors.ErrValidation)
	}

	trade, err := s.tradeRepo.FindTradeByID(ctx, req.TradeID)
	if err != nil {
		return nil, err
	}
	if trade.Status != domain.TradeCompleted {
		return nil, fmt.Errorf("%w: trade %s is %s, only completed trades can be disputed", apperrors.ErrInvalidState, trade.TradeID, trade.Status)
	}
	if trade.BuyerID != req.OpenedByUserID && trade.SellerID != req.OpenedByUserID {
		return nil, fmt.Errorf("%w: user %s is not a party to trade %s", apperrors.ErrForbidden, req.OpenedByUserID, req.TradeID)
	}

	active, err := s.disputeRepo.HasActiveDispute(ctx, req.TradeID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fmt.Errorf("%w: trade %s", apperrors.ErrDuplicateDispute, req.TradeID)
	}

	dispute := domain.Dispute{
		DisputeID:      uuid.NewString(),
		TradeID:        req.TradeID,
		Status:         domain.DisputeOpen,
		Resolution:     domain.ResolutionNone,
		Reason:         req.Reason,
		EvidenceURL:    req.EvidenceURL,
		OpenedByUserID: req.OpenedByUserID,
		OpenedAt:       time.Now().UTC(),
	}
	if err := s.disputeRepo.SaveDispute(ctx, dispute); err != nil {
		return nil, fmt.Errorf("failed to save dispute: %w", err)
	}

	logger.Info("Dispute opened",
		slog.String("dispute_id", dispute.DisputeID),
		slog.String("trade_id", dispute.TradeID),
		slog.String("opened_by", dispute.OpenedByUserID),
	)
	return &dispute, nil
}

// ResolveDispute closes an OPEN dispute with an admin-chosen outcome.
func (s *disputeService) ResolveDispute(ctx context.Context, disputeID string, resolution domain.DisputeResolution, note string) (*domain.Dispute, error) {
	switch resolution {
	case domain.ResolutionRefundBuyer, domain.ResolutionReleaseSeller, domain.ResolutionPartialRefund:
	default:
		return nil, fmt.Errorf("%w: unknown resolution %q", apperrors.ErrValidation, resolution)
	}
	return s.closeDispute(ctx, disputeID, domain.DisputeResolved, resolution, note)
}

// RejectDispute closes an OPEN dispute without granting the complaint.
func (s *disputeService) RejectDispute(ctx context.Context, disputeID string, note string) (*domain.Dispute, error) {
	return s.closeDispute(ctx, disputeID, domain.DisputeRejected, domain.ResolutionNone, note)
}

func (s *disputeService) closeDispute(ctx context.Context, disputeID string, status domain.DisputeStatus, resolution domain.DisputeResolution, note string) (*domain.Dispute, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	dispute, err := s.disputeRepo.FindDisputeByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if dispute.Status != domain.DisputeOpen {
		return nil, fmt.Errorf("%w: dispute %s is already %s", apperrors.ErrInvalidState, disputeID, dispute.Status)
	}

	resolvedAt := time.Now().UTC()
	if err := s.disputeRepo.CloseDispute(ctx, disputeID, status, resolution, note, resolvedAt); err != nil {
		return nil, err
	}

	dispute.Status = status
	dispute.Resolution = resolution
	dispute.AdminNote = note
	dispute.ResolvedAt = &resolvedAt

	logger.Info("Dispute closed",
		slog.String("dispute_id", disputeID),
		slog.String("status", string(status)),
		slog.String("resolution", string(resolution)),
	)
	return dispute, nil
}

// GetDispute fetches a dispute by id.
func (s *disputeService) GetDispute(ctx context.Context, disputeID string) (*domain.Dispute, error) {
	return s.disputeRepo.FindDisputeByID(ctx, disputeID)
}

// ListDisputesByOpener lists disputes opened by a user.
func (s *disputeService) ListDisputesByOpener(ctx context.Context, openedByUserID string) ([]domain.Dispute, error) {
	return s.disputeRepo.ListDisputesByOpener(ctx, openedByUserID)
}

// ListDisputesByStatus lists disputes in a given review state.
func (s *disputeService) ListDisputesByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error) {
	return s.disputeRepo.ListDisputesByStatus(ctx, status)
}
