package repositories

// RepositoryProvider groups the persistence facades handed to the
// service container at wiring time.
type RepositoryProvider struct {
	Wallet  WalletRepositoryFacade
	Payment PaymentRepositoryFacade
	Trade   TradeRepositoryFacade
	Listing ListingRepositoryFacade
	Carbon  CarbonRepositoryFacade
	Dispute DisputeRepositoryFacade
	Stats   StatsRepositoryFacade
}
