package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/middleware"
)

// carbonService manages per-lot carbon holdings. Calls are not
// idempotent: each one represents a distinct unit of work, and the
// caller must not replay them.
type carbonService struct {
	carbonRepo portsrepo.CarbonRepositoryFacade
}

// NewCarbonService creates the carbon holding service.
func NewCarbonService(carbonRepo portsrepo.CarbonRepositoryFacade) portssvc.CarbonSvcFacade {
	return &carbonService{carbonRepo: carbonRepo}
}

var _ portssvc.CarbonSvcFacade = (*carbonService)(nil)

func (s *carbonService) GetCarbonBalance(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	wallet, err := s.carbonRepo.FindCarbonWalletByOwnerID(ctx, ownerID)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

func (s *carbonService) ListHoldings(ctx context.Context, ownerID string) ([]domain.CarbonHolding, error) {
	return s.carbonRepo.ListHoldingsByOwner(ctx, ownerID)
}

func (s *carbonService) AddHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, qty.String())
	}

	if err := s.carbonRepo.AddHolding(ctx, ownerID, creditLotID, qty); err != nil {
		return err
	}
	logger.Info("Carbon holding added",
		slog.String("owner_id", ownerID),
		slog.String("credit_lot_id", creditLotID),
		slog.String("qty", qty.String()),
	)
	return nil
}

func (s *carbonService) RemoveHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, qty.String())
	}

	if err := s.carbonRepo.RemoveHolding(ctx, ownerID, creditLotID, qty); err != nil {
		return err
	}
	logger.Info("Carbon holding removed",
		slog.String("owner_id", ownerID),
		slog.String("credit_lot_id", creditLotID),
		slog.String("qty", qty.String()),
	)
	return nil
}

// TransferHolding moves credits of a lot between owners; remove and add
// happen in one storage transaction so a failed add rolls back the
// remove.
func (s *carbonService) TransferHolding(ctx context.Context, fromOwnerID string, toOwnerID string, creditLotID string, qty decimal.Decimal) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, qty.String())
	}
	if fromOwnerID == toOwnerID {
		return fmt.Errorf("%w: transfer to the same carbon wallet", apperrors.ErrValidation)
	}

	if err := s.carbonRepo.TransferHolding(ctx, fromOwnerID, toOwnerID, creditLotID, qty); err != nil {
		return err
	}
	logger.Info("Carbon holding transferred",
		slog.String("from_owner_id", fromOwnerID),
		slog.String("to_owner_id", toOwnerID),
		slog.String("credit_lot_id", creditLotID),
		slog.String("qty", qty.String()),
	)
	return nil
}
