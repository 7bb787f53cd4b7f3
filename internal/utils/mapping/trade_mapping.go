package mapping

import (
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/carbonex/carbon_settlement_app/internal/models"
)

// ToModelTrade converts a domain Trade to its persistence model.
func ToModelTrade(t domain.Trade) models.Trade {
	return models.Trade{
		TradeID:   t.TradeID,
		BuyerID:   t.BuyerID,
		SellerID:  t.SellerID,
		ListingID: t.ListingID,
		Amount:    t.Amount,
		Status:    models.TradeStatus(t.Status),
		CreatedAt: t.CreatedAt,
		SettledAt: t.SettledAt,
	}
}

// ToDomainTrade converts a persistence model Trade to its domain form.
func ToDomainTrade(t models.Trade) domain.Trade {
	return domain.Trade{
		TradeID:   t.TradeID,
		BuyerID:   t.BuyerID,
		SellerID:  t.SellerID,
		ListingID: t.ListingID,
		Amount:    t.Amount,
		Status:    domain.TradeStatus(t.Status),
		CreatedAt: t.CreatedAt,
		SettledAt: t.SettledAt,
	}
}

// ToDomainTradeSlice converts a slice of trade models.
func ToDomainTradeSlice(trades []models.Trade) []domain.Trade {
	out := make([]domain.Trade, len(trades))
	for i, t := range trades {
		out[i] = ToDomainTrade(t)
	}
	return out
}

// ToDomainListing converts a persistence model Listing to its domain form.
func ToDomainListing(l models.Listing) domain.Listing {
	return domain.Listing{
		ListingID:    l.ListingID,
		SellerID:     l.SellerID,
		Title:        l.Title,
		CreditLotID:  l.CreditLotID,
		CarbonAmount: l.CarbonAmount,
		Price:        l.Price,
		Status:       domain.ListingStatus(l.Status),
		CreatedAt:    l.CreatedAt,
	}
}
