package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/middleware"
)

// maxBalanceRetries bounds how often a version-conflicted wallet write
// is retried before ErrConcurrentModification surfaces to the caller.
const maxBalanceRetries = 3

// walletService implements the money-ledger operations. Every mutation
// is one repository call and therefore one storage transaction; the
// service only validates, builds ledger entries and retries transient
// version conflicts.
type walletService struct {
	walletRepo portsrepo.WalletRepositoryFacade
}

// NewWalletService creates the wallet ledger service.
func NewWalletService(walletRepo portsrepo.WalletRepositoryFacade) portssvc.WalletSvcFacade {
	return &walletService{walletRepo: walletRepo}
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)

// CreateWallets provisions the money wallet and carbon wallet together.
func (s *walletService) CreateWallets(ctx context.Context, ownerID string, creatorUserID string) (*domain.Wallet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}
	wallet := domain.Wallet{
		WalletID:    uuid.NewString(),
		OwnerID:     ownerID,
		Balance:     decimal.Zero,
		Version:     1,
		AuditFields: audit,
	}
	carbonWallet := domain.CarbonWallet{
		CarbonWalletID: uuid.NewString(),
		OwnerID:        ownerID,
		Balance:        decimal.Zero,
		AuditFields:    audit,
	}

	if err := s.walletRepo.SaveWalletPair(ctx, wallet, carbonWallet); err != nil {
		logger.Error("Failed to create wallet pair", slog.String("owner_id", ownerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create wallets for owner %s: %w", ownerID, err)
	}

	logger.Info("Wallet pair created", slog.String("owner_id", ownerID), slog.String("wallet_id", wallet.WalletID))
	return &wallet, nil
}

// GetBalance returns the current money balance for an account.
func (s *walletService) GetBalance(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	wallet, err := s.walletRepo.FindWalletByOwnerID(ctx, ownerID)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// Credit increases the balance and appends a SUCCESS ledger entry.
func (s *walletService) Credit(ctx context.Context, ownerID string, amount decimal.Decimal, description string) (*domain.LedgerEntry, error) {
	entry, err := s.applySingle(ctx, ownerID, amount, amount, domain.EntryCredit, description)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Debit decreases the balance and appends a SUCCESS ledger entry. The
// insufficient-balance check happens inside the storage transaction.
func (s *walletService) Debit(ctx context.Context, ownerID string, amount decimal.Decimal, description string) (*domain.LedgerEntry, error) {
	entry, err := s.applySingle(ctx, ownerID, amount, amount.Neg(), domain.EntryDebit, description)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *walletService) applySingle(ctx context.Context, ownerID string, amount decimal.Decimal, delta decimal.Decimal, entryType domain.EntryType, description string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, amount.String())
	}

	entry := domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		Type:        entryType,
		Status:      domain.EntrySuccess,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	change := portsrepo.BalanceChange{OwnerID: ownerID, Delta: delta, Entry: entry}

	if err := s.applyWithRetry(ctx, []portsrepo.BalanceChange{change}); err != nil {
		return nil, err
	}

	logger.Info("Wallet balance changed",
		slog.String("owner_id", ownerID),
		slog.String("entry_type", string(entryType)),
		slog.String("amount", amount.String()),
	)
	return &entry, nil
}

// Transfer composes the debit and credit as one storage transaction;
// total balance across the two wallets is conserved or nothing happens.
func (s *walletService) Transfer(ctx context.Context, fromOwnerID string, toOwnerID string, amount decimal.Decimal, description string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	if fromOwnerID == toOwnerID {
		return fmt.Errorf("%w: transfer to the same wallet", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	changes := []portsrepo.BalanceChange{
		{
			OwnerID: fromOwnerID,
			Delta:   amount.Neg(),
			Entry: domain.LedgerEntry{
				EntryID:     uuid.NewString(),
				Type:        domain.EntryDebit,
				Status:      domain.EntrySuccess,
				Amount:      amount,
				Description: description,
				CreatedAt:   now,
			},
		},
		{
			OwnerID: toOwnerID,
			Delta:   amount,
			Entry: domain.LedgerEntry{
				EntryID:     uuid.NewString(),
				Type:        domain.EntryCredit,
				Status:      domain.EntrySuccess,
				Amount:      amount,
				Description: description,
				CreatedAt:   now,
			},
		},
	}

	if err := s.applyWithRetry(ctx, changes); err != nil {
		return err
	}

	logger.Info("Transfer applied",
		slog.String("from_owner_id", fromOwnerID),
		slog.String("to_owner_id", toOwnerID),
		slog.String("amount", amount.String()),
	)
	return nil
}

// applyWithRetry retries the atomic apply on version conflicts.
// Business-rule failures are surfaced immediately.
func (s *walletService) applyWithRetry(ctx context.Context, changes []portsrepo.BalanceChange) error {
	var err error
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		err = s.walletRepo.ApplyBalanceChanges(ctx, changes)
		if err == nil || !errors.Is(err, apperrors.ErrConcurrentModification) {
			return err
		}
	}
	return err
}

// ListEntries returns the newest ledger entries for an account.
func (s *walletService) ListEntries(ctx context.Context, ownerID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.walletRepo.ListEntriesByOwner(ctx, ownerID, limit)
}
