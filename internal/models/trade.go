package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus mirrors domain.TradeStatus for persistence.
type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeConfirmed TradeStatus = "CONFIRMED"
	TradeCancelled TradeStatus = "CANCELLED"
	TradeCompleted TradeStatus = "COMPLETED"
)

// ListingStatus mirrors domain.ListingStatus for persistence.
type ListingStatus string

const (
	ListingOpen      ListingStatus = "OPEN"
	ListingReserved  ListingStatus = "RESERVED"
	ListingSold      ListingStatus = "SOLD"
	ListingCancelled ListingStatus = "CANCELLED"
	ListingApproved  ListingStatus = "APPROVED"
	ListingRejected  ListingStatus = "REJECTED"
)

// Trade represents a row in the trades table.
type Trade struct {
	TradeID   string          `db:"trade_id"`
	BuyerID   string          `db:"buyer_id"`
	SellerID  string          `db:"seller_id"`
	ListingID string          `db:"listing_id"`
	Amount    decimal.Decimal `db:"amount"`
	Status    TradeStatus     `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
	SettledAt *time.Time      `db:"settled_at"`
}

// Listing represents a row in the listings table.
type Listing struct {
	ListingID    string          `db:"listing_id"`
	SellerID     string          `db:"seller_id"`
	Title        string          `db:"title"`
	CreditLotID  string          `db:"credit_lot_id"`
	CarbonAmount decimal.Decimal `db:"carbon_amount"`
	Price        decimal.Decimal `db:"price"`
	Status       ListingStatus   `db:"status"`
	CreatedAt    time.Time       `db:"created_at"`
}
