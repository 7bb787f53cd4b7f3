package repositories

import (
	"context"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
)

// StatsRepositoryFacade computes read-only aggregates for the
// marketplace dashboard.
type StatsRepositoryFacade interface {
	MarketSnapshot(ctx context.Context) (*domain.MarketSnapshot, error)
}
