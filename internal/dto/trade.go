package dto

import (
	"time"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTradeRequest defines the data needed to start a trade.
type CreateTradeRequest struct {
	ListingID string `json:"listingID" binding:"required"`
}

// TradeResponse defines the data returned for a trade.
type TradeResponse struct {
	TradeID   string          `json:"tradeID"`
	BuyerID   string          `json:"buyerID"`
	SellerID  string          `json:"sellerID"`
	ListingID string          `json:"listingID"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	SettledAt *time.Time      `json:"settledAt,omitempty"`
}

// ListingResponse defines the data returned for a listing.
type ListingResponse struct {
	ListingID    string          `json:"listingID"`
	SellerID     string          `json:"sellerID"`
	Title        string          `json:"title"`
	CreditLotID  string          `json:"creditLotID"`
	CarbonAmount decimal.Decimal `json:"carbonAmount"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ListTradesParams defines query parameters for listing trades.
type ListTradesParams struct {
	Limit int `form:"limit,default=20"`
}

// ToTradeResponse converts a domain.Trade to TradeResponse DTO
func ToTradeResponse(t *domain.Trade) TradeResponse {
	return TradeResponse{
		TradeID:   t.TradeID,
		BuyerID:   t.BuyerID,
		SellerID:  t.SellerID,
		ListingID: t.ListingID,
		Amount:    t.Amount,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		SettledAt: t.SettledAt,
	}
}

// ToListTradeResponse converts a slice of trades.
func ToListTradeResponse(trades []domain.Trade) []TradeResponse {
	res := make([]TradeResponse, len(trades))
	for i, t := range trades {
		res[i] = ToTradeResponse(&t)
	}
	return res
}

// ToListingResponse converts a domain.Listing to ListingResponse DTO
func ToListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ListingID:    l.ListingID,
		SellerID:     l.SellerID,
		Title:        l.Title,
		CreditLotID:  l.CreditLotID,
		CarbonAmount: l.CarbonAmount,
		Price:        l.Price,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
	}
}

// ToListListingResponse converts a slice of listings.
func ToListListingResponse(listings []domain.Listing) []ListingResponse {
	res := make([]ListingResponse, len(listings))
	for i, l := range listings {
		res[i] = ToListingResponse(&l)
	}
	return res
}
