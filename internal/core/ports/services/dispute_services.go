package services

import (
	"context"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
)

// OpenDisputeRequest carries the fields needed to open a dispute
// against a trade.
type OpenDisputeRequest struct {
	TradeID        string
	Reason         string
	EvidenceURL    string
	OpenedByUserID string
}

// DisputeSvcFacade is the dispute overlay surface of the settlement API.
// It reads trades and never mutates the ledgers.
type DisputeSvcFacade interface {
	OpenDispute(ctx context.Context, req OpenDisputeRequest) (*domain.Dispute, error)
	ResolveDispute(ctx context.Context, disputeID string, resolution domain.DisputeResolution, note string) (*domain.Dispute, error)
	RejectDispute(ctx context.Context, disputeID string, note string) (*domain.Dispute, error)

	GetDispute(ctx context.Context, disputeID string) (*domain.Dispute, error)
	ListDisputesByOpener(ctx context.Context, openedByUserID string) ([]domain.Dispute, error)
	ListDisputesByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error)
}
