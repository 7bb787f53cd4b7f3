package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CarbonWallet represents a row in the carbon_wallets table.
type CarbonWallet struct {
	CarbonWalletID string          `db:"carbon_wallet_id"`
	OwnerID        string          `db:"owner_id"`
	Balance        decimal.Decimal `db:"balance"`
	AuditFields
}

// CarbonHolding represents a row in the carbon_holdings table.
// (carbon_wallet_id, credit_lot_id) is unique; rows are deleted when
// quantity reaches zero.
type CarbonHolding struct {
	HoldingID      string          `db:"holding_id"`
	CarbonWalletID string          `db:"carbon_wallet_id"`
	CreditLotID    string          `db:"credit_lot_id"`
	Quantity       decimal.Decimal `db:"quantity"`
	CreatedAt      time.Time       `db:"created_at"`
	LastUpdatedAt  time.Time       `db:"last_updated_at"`
}
