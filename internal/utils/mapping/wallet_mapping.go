package mapping

import (
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/carbonex/carbon_settlement_app/internal/models"
)

// ToModelWallet converts a domain Wallet to its persistence model.
func ToModelWallet(w domain.Wallet) models.Wallet {
	return models.Wallet{
		WalletID: w.WalletID,
		OwnerID:  w.OwnerID,
		Balance:  w.Balance,
		Version:  w.Version,
		AuditFields: models.AuditFields{
			CreatedAt:     w.CreatedAt,
			CreatedBy:     w.CreatedBy,
			LastUpdatedAt: w.LastUpdatedAt,
			LastUpdatedBy: w.LastUpdatedBy,
		},
	}
}

// ToDomainWallet converts a persistence model Wallet to its domain form.
func ToDomainWallet(w models.Wallet) domain.Wallet {
	return domain.Wallet{
		WalletID: w.WalletID,
		OwnerID:  w.OwnerID,
		Balance:  w.Balance,
		Version:  w.Version,
		AuditFields: domain.AuditFields{
			CreatedAt:     w.CreatedAt,
			CreatedBy:     w.CreatedBy,
			LastUpdatedAt: w.LastUpdatedAt,
			LastUpdatedBy: w.LastUpdatedBy,
		},
	}
}

// ToModelLedgerEntry converts a domain LedgerEntry to its persistence model.
func ToModelLedgerEntry(e domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:       e.EntryID,
		WalletID:      e.WalletID,
		Type:          models.EntryType(e.Type),
		Status:        models.EntryStatus(e.Status),
		Amount:        e.Amount,
		ExternalRef:   e.ExternalRef,
		Description:   e.Description,
		FailureReason: e.FailureReason,
		CreatedAt:     e.CreatedAt,
	}
}

// ToDomainLedgerEntry converts a persistence model LedgerEntry to its domain form.
func ToDomainLedgerEntry(e models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:       e.EntryID,
		WalletID:      e.WalletID,
		Type:          domain.EntryType(e.Type),
		Status:        domain.EntryStatus(e.Status),
		Amount:        e.Amount,
		ExternalRef:   e.ExternalRef,
		Description:   e.Description,
		FailureReason: e.FailureReason,
		CreatedAt:     e.CreatedAt,
	}
}

// ToDomainLedgerEntrySlice converts a slice of ledger entry models.
func ToDomainLedgerEntrySlice(entries []models.LedgerEntry) []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, len(entries))
	for i, e := range entries {
		out[i] = ToDomainLedgerEntry(e)
	}
	return out
}
