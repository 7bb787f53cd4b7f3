package repositories

import (
	"context"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceChange describes one wallet mutation to apply atomically.
// Delta is signed; the ledger entry records the positive amount and the
// business meaning of the movement.
type BalanceChange struct {
	OwnerID string
	Delta   decimal.Decimal
	Entry   domain.LedgerEntry
}

// WalletRepositoryFacade is the persistence port for money wallets and
// their append-only transaction log.
type WalletRepositoryFacade interface {
	// SaveWalletPair creates the money wallet and carbon wallet for an
	// account in one transaction; wallets are created together exactly
	// once per account.
	SaveWalletPair(ctx context.Context, wallet domain.Wallet, carbonWallet domain.CarbonWallet) error

	FindWalletByOwnerID(ctx context.Context, ownerID string) (*domain.Wallet, error)

	// ApplyBalanceChanges applies all changes and inserts their ledger
	// entries in a single transaction. Each wallet write is guarded by
	// the wallet's optimistic version; a version mismatch yields
	// apperrors.ErrConcurrentModification and nothing is applied. A
	// change that would take a balance negative yields
	// apperrors.ErrInsufficientBalance.
	ApplyBalanceChanges(ctx context.Context, changes []BalanceChange) error

	ListEntriesByOwner(ctx context.Context, ownerID string, limit int) ([]domain.LedgerEntry, error)
}

// PaymentRepositoryFacade is the persistence port for gateway top-ups:
// the PENDING ledger entry tagged with the external reference, and its
// exactly-once settlement.
type PaymentRepositoryFacade interface {
	// SavePendingTopup inserts the PENDING TOPUP entry carrying the
	// unique external reference.
	SavePendingTopup(ctx context.Context, entry domain.LedgerEntry) error

	FindEntryByExternalRef(ctx context.Context, externalRef string) (*domain.LedgerEntry, error)

	// ConfirmTopup credits the wallet by the entry amount and marks the
	// entry SUCCESS, all in one transaction. Returns applied=false when
	// the entry is no longer PENDING (the reference was already
	// consumed); the balance is untouched in that case.
	ConfirmTopup(ctx context.Context, externalRef string, description string) (applied bool, err error)

	// FailTopup marks the entry FAILED with the given reason. Returns
	// applied=false when the entry is no longer PENDING.
	FailTopup(ctx context.Context, externalRef string, reason string) (applied bool, err error)
}
