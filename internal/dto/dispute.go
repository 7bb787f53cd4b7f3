package dto

import (
	"time"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
)

// OpenDisputeRequest defines the data needed to open a dispute.
type OpenDisputeRequest struct {
	TradeID     string `json:"tradeID" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	EvidenceURL string `json:"evidenceURL"`
}

// ResolveDisputeRequest defines the admin outcome for a dispute.
type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required,oneof=REFUND_BUYER RELEASE_SELLER PARTIAL_REFUND"`
	Note       string `json:"note"`
}

// RejectDisputeRequest defines the admin rejection of a dispute.
type RejectDisputeRequest struct {
	Note string `json:"note"`
}

// DisputeResponse defines the data returned for a dispute.
type DisputeResponse struct {
	DisputeID      string     `json:"disputeID"`
	TradeID        string     `json:"tradeID"`
	Status         string     `json:"status"`
	Resolution     string     `json:"resolution"`
	Reason         string     `json:"reason"`
	EvidenceURL    string     `json:"evidenceURL,omitempty"`
	OpenedByUserID string     `json:"openedByUserID"`
	AdminNote      string     `json:"adminNote,omitempty"`
	OpenedAt       time.Time  `json:"openedAt"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
}

// ToDisputeResponse converts a domain.Dispute to DisputeResponse DTO
func ToDisputeResponse(d *domain.Dispute) DisputeResponse {
	return DisputeResponse{
		DisputeID:      d.DisputeID,
		TradeID:        d.TradeID,
		Status:         string(d.Status),
		Resolution:     string(d.Resolution),
		Reason:         d.Reason,
		EvidenceURL:    d.EvidenceURL,
		OpenedByUserID: d.OpenedByUserID,
		AdminNote:      d.AdminNote,
		OpenedAt:       d.OpenedAt,
		ResolvedAt:     d.ResolvedAt,
	}
}

// ToListDisputeResponse converts a slice of disputes.
func ToListDisputeResponse(disputes []domain.Dispute) []DisputeResponse {
	res := make([]DisputeResponse, len(disputes))
	for i, d := range disputes {
		res[i] = ToDisputeResponse(&d)
	}
	return res
}
