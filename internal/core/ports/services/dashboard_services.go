package services

import (
	"context"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
)

// DashboardSvcFacade streams periodic marketplace snapshots to
// subscribers over server-sent events.
type DashboardSvcFacade interface {
	// Run recomputes and broadcasts snapshots until ctx is cancelled.
	Run(ctx context.Context)

	// Subscribe registers a listener. The returned cancel func must be
	// called when the subscriber goes away.
	Subscribe() (<-chan domain.MarketSnapshot, func())

	// Snapshot computes the current aggregate on demand.
	Snapshot(ctx context.Context) (*domain.MarketSnapshot, error)
}
