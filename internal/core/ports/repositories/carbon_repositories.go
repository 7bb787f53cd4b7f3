package repositories

import (
	"context"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CarbonRepositoryFacade is the persistence port for carbon wallets and
// per-lot holdings. Every mutation maintains the aggregate wallet
// balance in the same transaction, so sum(holdings) == balance holds at
// all times.
type CarbonRepositoryFacade interface {
	FindCarbonWalletByOwnerID(ctx context.Context, ownerID string) (*domain.CarbonWallet, error)
	ListHoldingsByOwner(ctx context.Context, ownerID string) ([]domain.CarbonHolding, error)

	// AddHolding upserts the (wallet, lot) row, adding qty.
	AddHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error

	// RemoveHolding decrements the (wallet, lot) row, deleting it at
	// zero. Fails with apperrors.ErrInsufficientHoldings when the held
	// quantity is smaller than qty.
	RemoveHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error

	// TransferHolding moves qty of the lot between owners in one
	// transaction, locking both carbon wallets in ascending wallet-id
	// order. If the add side fails the remove rolls back too.
	TransferHolding(ctx context.Context, fromOwnerID string, toOwnerID string, creditLotID string, qty decimal.Decimal) error
}
