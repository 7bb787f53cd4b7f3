package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus is the lifecycle state of a trade.
// PENDING is the only non-terminal state; confirm settles straight to
// COMPLETED and cancel moves to CANCELLED. Either terminal state is
// reached exactly once.
type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeConfirmed TradeStatus = "CONFIRMED"
	TradeCancelled TradeStatus = "CANCELLED"
	TradeCompleted TradeStatus = "COMPLETED"
)

// IsTerminal reports whether no further transitions are permitted.
func (s TradeStatus) IsTerminal() bool {
	return s == TradeCancelled || s == TradeCompleted
}

// Trade is a listing-backed purchase between a buyer and a seller.
// One trade references exactly one listing.
type Trade struct {
	TradeID   string          `json:"tradeID"`
	BuyerID   string          `json:"buyerID"`
	SellerID  string          `json:"sellerID"`
	ListingID string          `json:"listingID"`
	Amount    decimal.Decimal `json:"amount"` // listing price at creation time
	Status    TradeStatus     `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	SettledAt *time.Time      `json:"settledAt,omitempty"`
}
