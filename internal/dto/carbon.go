package dto

import (
	"time"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CarbonBalanceResponse defines the data returned for a carbon balance
// query.
type CarbonBalanceResponse struct {
	OwnerID string          `json:"ownerID"`
	Balance decimal.Decimal `json:"balance"`
}

// HoldingResponse defines the data returned for one credit-lot holding.
type HoldingResponse struct {
	CreditLotID   string          `json:"creditLotID"`
	Quantity      decimal.Decimal `json:"quantity"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// MoveHoldingRequest defines the data for adding or removing credits of
// one lot.
type MoveHoldingRequest struct {
	CreditLotID string          `json:"creditLotID" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required,decimalgt0"`
}

// TransferHoldingRequest defines the data for moving credits of one lot
// to another account.
type TransferHoldingRequest struct {
	ToOwnerID   string          `json:"toOwnerID" binding:"required"`
	CreditLotID string          `json:"creditLotID" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required,decimalgt0"`
}

// ToHoldingResponse converts a domain.CarbonHolding to its DTO
func ToHoldingResponse(h *domain.CarbonHolding) HoldingResponse {
	return HoldingResponse{
		CreditLotID:   h.CreditLotID,
		Quantity:      h.Quantity,
		LastUpdatedAt: h.LastUpdatedAt,
	}
}

// ToListHoldingResponse converts a slice of holdings.
func ToListHoldingResponse(holdings []domain.CarbonHolding) []HoldingResponse {
	res := make([]HoldingResponse, len(holdings))
	for i, h := range holdings {
		res[i] = ToHoldingResponse(&h)
	}
	return res
}
