package mapping

import (
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	"github.com/carbonex/carbon_settlement_app/internal/models"
)

// ToModelDispute converts a domain Dispute to its persistence model.
func ToModelDispute(d domain.Dispute) models.Dispute {
	return models.Dispute{
		DisputeID:      d.DisputeID,
		TradeID:        d.TradeID,
		Status:         models.DisputeStatus(d.Status),
		Resolution:     string(d.Resolution),
		Reason:         d.Reason,
		EvidenceURL:    d.EvidenceURL,
		OpenedByUserID: d.OpenedByUserID,
		AdminNote:      d.AdminNote,
		OpenedAt:       d.OpenedAt,
		ResolvedAt:     d.ResolvedAt,
	}
}

// ToDomainDispute converts a persistence model Dispute to its domain form.
func ToDomainDispute(d models.Dispute) domain.Dispute {
	return domain.Dispute{
		DisputeID:      d.DisputeID,
		TradeID:        d.TradeID,
		Status:         domain.DisputeStatus(d.Status),
		Resolution:     domain.DisputeResolution(d.Resolution),
		Reason:         d.Reason,
		EvidenceURL:    d.EvidenceURL,
		OpenedByUserID: d.OpenedByUserID,
		AdminNote:      d.AdminNote,
		OpenedAt:       d.OpenedAt,
		ResolvedAt:     d.ResolvedAt,
	}
}

// ToDomainDisputeSlice converts a slice of dispute models.
func ToDomainDisputeSlice(disputes []models.Dispute) []domain.Dispute {
	out := make([]domain.Dispute, len(disputes))
	for i, d := range disputes {
		out[i] = ToDomainDispute(d)
	}
	return out
}
