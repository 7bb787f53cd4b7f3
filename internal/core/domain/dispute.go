package domain

import "time"

// DisputeStatus is the review state of a dispute. OPEN is the only
// active state; RESOLVED and REJECTED are terminal.
type DisputeStatus string

const (
	DisputeOpen     DisputeStatus = "OPEN"
	DisputeResolved DisputeStatus = "RESOLVED"
	DisputeRejected DisputeStatus = "REJECTED"
)

// DisputeResolution is the outcome recorded when a dispute is resolved.
// Any compensating transfer it implies is a separate, explicit ledger
// operation; the overlay itself never mutates balances.
type DisputeResolution string

const (
	ResolutionNone          DisputeResolution = "NONE"
	ResolutionRefundBuyer   DisputeResolution = "REFUND_BUYER"
	ResolutionReleaseSeller DisputeResolution = "RELEASE_SELLER"
	ResolutionPartialRefund DisputeResolution = "PARTIAL_REFUND"
)

// Dispute is a post-trade complaint attached to a completed trade.
// At most one non-terminal dispute may exist per trade.
type Dispute struct {
	DisputeID      string            `json:"disputeID"`
	TradeID        string            `json:"tradeID"`
	Status         DisputeStatus     `json:"status"`
	Resolution     DisputeResolution `json:"resolution"`
	Reason         string            `json:"reason"`
	EvidenceURL    string            `json:"evidenceURL,omitempty"`
	OpenedByUserID string            `json:"openedByUserID"`
	AdminNote      string            `json:"adminNote,omitempty"`
	OpenedAt       time.Time         `json:"openedAt"`
	ResolvedAt     *time.Time        `json:"resolvedAt,omitempty"`
}
