package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	"github.com/carbonex/carbon_settlement_app/internal/models"
)

type PgxStatsRepository struct {
	BaseRepository
}

// newPgxStatsRepository creates a new repository for dashboard
// aggregates.
func newPgxStatsRepository(pool *pgxpool.Pool) portsrepo.StatsRepositoryFacade {
	return &PgxStatsRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.StatsRepositoryFacade = (*PgxStatsRepository)(nil)

// MarketSnapshot computes the current marketplace aggregate in a single
// round trip.
func (r *PgxStatsRepository) MarketSnapshot(ctx context.Context) (*domain.MarketSnapshot, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM listings WHERE status = $1),
			(SELECT COUNT(*) FROM trades WHERE status = $2),
			(SELECT COUNT(*) FROM trades WHERE status = $3),
			(SELECT COALESCE(SUM(amount), 0) FROM trades WHERE status = $3),
			(SELECT COUNT(*) FROM disputes WHERE status = $4);
	`
	var snapshot domain.MarketSnapshot
	err := r.Pool.QueryRow(ctx, query,
		models.ListingOpen,
		models.TradePending,
		models.TradeCompleted,
		models.DisputeOpen,
	).Scan(
		&snapshot.OpenListings,
		&snapshot.PendingTrades,
		&snapshot.CompletedTrades,
		&snapshot.SettledVolume,
		&snapshot.OpenDisputes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute market snapshot: %w", err)
	}

	snapshot.GeneratedAt = time.Now().UTC()
	return &snapshot, nil
}
