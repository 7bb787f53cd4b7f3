package pgsql

import (
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Wallet:  newPgxWalletRepository(dbPool),
		Payment: newPgxPaymentRepository(dbPool),
		Trade:   newPgxTradeRepository(dbPool),
		Listing: newPgxListingRepository(dbPool),
		Carbon:  newPgxCarbonRepository(dbPool),
		Dispute: newPgxDisputeRepository(dbPool),
		Stats:   newPgxStatsRepository(dbPool),
	}
}
