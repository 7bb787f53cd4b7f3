package dto

import (
	"github.com/shopspring/decimal"
)

// CreateTopupRequest defines the data needed to start a gateway top-up.
type CreateTopupRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,decimalgt0"`
}

// TopupRedirectResponse carries the signed gateway URL the client must
// follow to pay.
type TopupRedirectResponse struct {
	PaymentURL string `json:"paymentURL"`
	TxnRef     string `json:"txnRef"`
}

// GatewayAckResponse is the body the gateway expects from the
// server-to-server notification endpoint.
type GatewayAckResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}
