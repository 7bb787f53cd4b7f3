package services

import (
	"context"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WalletSvcFacade is the money-ledger surface of the settlement API.
// All operations are keyed by account (owner) id.
type WalletSvcFacade interface {
	// CreateWallets provisions the money wallet and carbon wallet for a
	// new account, together.
	CreateWallets(ctx context.Context, ownerID string, creatorUserID string) (*domain.Wallet, error)

	GetBalance(ctx context.Context, ownerID string) (decimal.Decimal, error)

	Credit(ctx context.Context, ownerID string, amount decimal.Decimal, description string) (*domain.LedgerEntry, error)
	Debit(ctx context.Context, ownerID string, amount decimal.Decimal, description string) (*domain.LedgerEntry, error)

	// Transfer debits from and credits to as one atomic unit; on any
	// failure neither balance changes.
	Transfer(ctx context.Context, fromOwnerID string, toOwnerID string, amount decimal.Decimal, description string) error

	ListEntries(ctx context.Context, ownerID string, limit int) ([]domain.LedgerEntry, error)
}
