package models

import "time"

// DisputeStatus mirrors domain.DisputeStatus for persistence.
type DisputeStatus string

const (
	DisputeOpen     DisputeStatus = "OPEN"
	DisputeResolved DisputeStatus = "RESOLVED"
	DisputeRejected DisputeStatus = "REJECTED"
)

// Dispute represents a row in the disputes table.
type Dispute struct {
	DisputeID      string     `db:"dispute_id"`
	TradeID        string     `db:"trade_id"`
	Status         DisputeStatus `db:"status"`
	Resolution     string     `db:"resolution"`
	Reason         string     `db:"reason"`
	EvidenceURL    string     `db:"evidence_url"`
	OpenedByUserID string     `db:"opened_by_user_id"`
	AdminNote      string     `db:"admin_note"`
	OpenedAt       time.Time  `db:"opened_at"`
	ResolvedAt     *time.Time `db:"resolved_at"`
}
