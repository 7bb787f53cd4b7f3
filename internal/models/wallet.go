package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType mirrors domain.EntryType for persistence.
type EntryType string

const (
	EntryTopup        EntryType = "TOPUP"
	EntryPurchase     EntryType = "PURCHASE"
	EntrySaleProceeds EntryType = "SALE_PROCEEDS"
	EntryWithdraw     EntryType = "WITHDRAW"
	EntryCredit       EntryType = "CREDIT"
	EntryDebit        EntryType = "DEBIT"
)

// EntryStatus mirrors domain.EntryStatus for persistence.
type EntryStatus string

const (
	EntryPending EntryStatus = "PENDING"
	EntrySuccess EntryStatus = "SUCCESS"
	EntryFailed  EntryStatus = "FAILED"
)

// Wallet represents a row in the wallets table.
type Wallet struct {
	WalletID string          `db:"wallet_id"`
	OwnerID  string          `db:"owner_id"`
	Balance  decimal.Decimal `db:"balance"`
	Version  int64           `db:"version"`
	AuditFields
}

// LedgerEntry represents a row in the wallet_transactions table.
// external_ref carries a unique index; only status and failure_reason
// are ever updated after insertion.
type LedgerEntry struct {
	EntryID       string          `db:"entry_id"`
	WalletID      string          `db:"wallet_id"`
	Type          EntryType       `db:"entry_type"`
	Status        EntryStatus     `db:"status"`
	Amount        decimal.Decimal `db:"amount"`
	ExternalRef   *string         `db:"external_ref"`
	Description   string          `db:"description"`
	FailureReason string          `db:"failure_reason"`
	CreatedAt     time.Time       `db:"created_at"`
}
