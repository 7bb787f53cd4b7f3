package mapping

import (
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/carbonex/carbon_settlement_app/internal/models"
)

// ToDomainCarbonWallet converts a persistence model CarbonWallet to its domain form.
func ToDomainCarbonWallet(w models.CarbonWallet) domain.CarbonWallet {
	return domain.CarbonWallet{
		CarbonWalletID: w.CarbonWalletID,
		OwnerID:        w.OwnerID,
		Balance:        w.Balance,
		AuditFields: domain.AuditFields{
			CreatedAt:     w.CreatedAt,
			CreatedBy:     w.CreatedBy,
			LastUpdatedAt: w.LastUpdatedAt,
			LastUpdatedBy: w.LastUpdatedBy,
		},
	}
}

// ToDomainCarbonHolding converts a persistence model CarbonHolding to its domain form.
func ToDomainCarbonHolding(h models.CarbonHolding) domain.CarbonHolding {
	return domain.CarbonHolding{
		HoldingID:      h.HoldingID,
		CarbonWalletID: h.CarbonWalletID,
		CreditLotID:    h.CreditLotID,
		Quantity:       h.Quantity,
		CreatedAt:      h.CreatedAt,
		LastUpdatedAt:  h.LastUpdatedAt,
	}
}

// ToDomainCarbonHoldingSlice converts a slice of holding models.
func ToDomainCarbonHoldingSlice(holdings []models.CarbonHolding) []domain.CarbonHolding {
	out := make([]domain.CarbonHolding, len(holdings))
	for i, h := range holdings {
		out[i] = ToDomainCarbonHolding(h)
	}
	return out
}
