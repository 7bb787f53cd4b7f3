package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry by the business operation that produced it.
type EntryType string

const (
	EntryTopup        EntryType = "TOPUP"
	EntryPurchase     EntryType = "PURCHASE"
	EntrySaleProceeds EntryType = "SALE_PROCEEDS"
	EntryWithdraw     EntryType = "WITHDRAW"
	EntryCredit       EntryType = "CREDIT"
	EntryDebit        EntryType = "DEBIT"
)

// EntryStatus is the settlement state of a ledger entry.
// PENDING entries have not touched the balance yet; the transition to
// SUCCESS or FAILED happens exactly once.
type EntryStatus string

const (
	EntryPending EntryStatus = "PENDING"
	EntrySuccess EntryStatus = "SUCCESS"
	EntryFailed  EntryStatus = "FAILED"
)

// Wallet is a participant's money wallet. Balance is never negative.
// Version is the optimistic-concurrency token, incremented on every mutation.
type Wallet struct {
	WalletID string          `json:"walletID"`
	OwnerID  string          `json:"ownerID"`
	Balance  decimal.Decimal `json:"balance"`
	Version  int64           `json:"version"`
	AuditFields
}

// LedgerEntry is one immutable line in a wallet's transaction log.
// Only Status and FailureReason may change after insertion.
type LedgerEntry struct {
	EntryID       string          `json:"entryID"`
	WalletID      string          `json:"walletID"`
	Type          EntryType       `json:"type"`
	Status        EntryStatus     `json:"status"`
	Amount        decimal.Decimal `json:"amount"` // always positive
	ExternalRef   *string         `json:"externalRef,omitempty"`
	Description   string          `json:"description"`
	FailureReason string          `json:"failureReason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
