package services

import (
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Wallet first since the trade flow depends on it
	container.Wallet = NewWalletService(repos.Wallet)

	container.Carbon = NewCarbonService(repos.Carbon)
	container.Trade = NewTradeService(repos.Trade, repos.Listing, container.Wallet)
	container.Payment = NewPaymentService(cfg.Gateway, repos.Wallet, repos.Payment)
	container.Dispute = NewDisputeService(repos.Dispute, repos.Trade)
	container.Dashboard = NewDashboardService(repos.Stats, cfg.DashboardInterval)

	return container
}
