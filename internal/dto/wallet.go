package dto

import (
	"time"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateWalletsRequest defines the data needed to provision the wallet
// pair for an account. OwnerID defaults to the caller when empty.
type CreateWalletsRequest struct {
	OwnerID string `json:"ownerID"`
}

// WalletResponse defines the data returned for a money wallet.
type WalletResponse struct {
	WalletID      string          `json:"walletID"`
	OwnerID       string          `json:"ownerID"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// BalanceResponse defines the data returned for a balance query.
type BalanceResponse struct {
	OwnerID string          `json:"ownerID"`
	Balance decimal.Decimal `json:"balance"`
}

// MoveMoneyRequest defines the data for a credit or debit.
type MoveMoneyRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,decimalgt0"`
	Description string          `json:"description"`
}

// TransferRequest defines the data for an atomic wallet-to-wallet
// transfer.
type TransferRequest struct {
	ToOwnerID   string          `json:"toOwnerID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,decimalgt0"`
	Description string          `json:"description"`
}

// LedgerEntryResponse defines the data returned for one ledger entry.
type LedgerEntryResponse struct {
	EntryID       string          `json:"entryID"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	ExternalRef   string          `json:"externalRef,omitempty"`
	Description   string          `json:"description,omitempty"`
	FailureReason string          `json:"failureReason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListEntriesParams defines query parameters for listing ledger entries.
type ListEntriesParams struct {
	Limit int `form:"limit,default=20"`
}

// ToWalletResponse converts a domain.Wallet to WalletResponse DTO
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:      w.WalletID,
		OwnerID:       w.OwnerID,
		Balance:       w.Balance,
		CreatedAt:     w.CreatedAt,
		LastUpdatedAt: w.LastUpdatedAt,
	}
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to its DTO
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		EntryID:       e.EntryID,
		Type:          string(e.Type),
		Status:        string(e.Status),
		Amount:        e.Amount,
		Description:   e.Description,
		FailureReason: e.FailureReason,
		CreatedAt:     e.CreatedAt,
	}
	if e.ExternalRef != nil {
		resp.ExternalRef = *e.ExternalRef
	}
	return resp
}

// ToListLedgerEntryResponse converts a slice of ledger entries.
func ToListLedgerEntryResponse(entries []domain.LedgerEntry) []LedgerEntryResponse {
	res := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToLedgerEntryResponse(&e)
	}
	return res
}
