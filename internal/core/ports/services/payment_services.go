package services

import (
	"context"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TopupRequest carries everything needed to build a signed redirect.
type TopupRequest struct {
	OwnerID  string
	Amount   decimal.Decimal
	ClientIP string
}

// TopupRedirect is the outbound half of a top-up: where to send the
// payer, under which reference the callback will arrive.
type TopupRedirect struct {
	PaymentURL string
	TxnRef     string
}

// PaymentSvcFacade reconciles the external payment gateway against the
// wallet ledger.
type PaymentSvcFacade interface {
	// CreateTopup registers a PENDING TOPUP ledger entry under a fresh
	// unique reference and builds the signed redirect payload.
	CreateTopup(ctx context.Context, req TopupRequest) (*TopupRedirect, error)

	// VerifyCallback checks the payload signature. Never returns an
	// error: any mismatch or missing signature yields false.
	VerifyCallback(params map[string]string) bool

	// ProcessCallback applies a verified callback to the ledger exactly
	// once. Replays and the return-URL/IPN double delivery are silent
	// no-ops.
	ProcessCallback(ctx context.Context, params map[string]string) error

	// GetTopup looks up the ledger entry for an external reference.
	GetTopup(ctx context.Context, txnRef string) (*domain.LedgerEntry, error)
}
