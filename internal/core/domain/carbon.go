package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CarbonWallet aggregates the carbon credits owned by one account.
// Balance always equals the sum of the wallet's holding quantities;
// both are mutated in the same storage transaction.
type CarbonWallet struct {
	CarbonWalletID string          `json:"carbonWalletID"`
	OwnerID        string          `json:"ownerID"`
	Balance        decimal.Decimal `json:"balance"`
	AuditFields
}

// CarbonHolding tracks how many credits of one lot a wallet holds,
// preserving provenance per credit lot. A holding with quantity zero
// is deleted, never persisted.
type CarbonHolding struct {
	HoldingID      string          `json:"holdingID"`
	CarbonWalletID string          `json:"carbonWalletID"`
	CreditLotID    string          `json:"creditLotID"`
	Quantity       decimal.Decimal `json:"quantity"` // always > 0
	CreatedAt      time.Time       `json:"createdAt"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}
