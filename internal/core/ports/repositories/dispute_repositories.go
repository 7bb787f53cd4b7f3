package repositories

import (
	"context"
	"time"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
)

// DisputeRepositoryFacade is the persistence port for the dispute overlay.
type DisputeRepositoryFacade interface {
	SaveDispute(ctx context.Context, dispute domain.Dispute) error
	FindDisputeByID(ctx context.Context, disputeID string) (*domain.Dispute, error)
	HasActiveDispute(ctx context.Context, tradeID string) (bool, error)

	// CloseDispute stamps the terminal status, resolution and note. The
	// update is conditional on the dispute still being OPEN; 0 rows
	// yields apperrors.ErrInvalidState.
	CloseDispute(ctx context.Context, disputeID string, status domain.DisputeStatus, resolution domain.DisputeResolution, note string, resolvedAt time.Time) error

	ListDisputesByOpener(ctx context.Context, openedByUserID string) ([]domain.Dispute, error)
	ListDisputesByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error)
}
