package services

import (
	"context"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CarbonSvcFacade is the carbon-holding surface of the settlement API.
type CarbonSvcFacade interface {
	GetCarbonBalance(ctx context.Context, ownerID string) (decimal.Decimal, error)
	ListHoldings(ctx context.Context, ownerID string) ([]domain.CarbonHolding, error)

	AddHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error
	RemoveHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error
	TransferHolding(ctx context.Context, fromOwnerID string, toOwnerID string, creditLotID string, qty decimal.Decimal) error
}
