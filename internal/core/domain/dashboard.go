package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketSnapshot is a point-in-time aggregate of marketplace activity,
// pushed to dashboard subscribers.
type MarketSnapshot struct {
	OpenListings    int64           `json:"openListings"`
	PendingTrades   int64           `json:"pendingTrades"`
	CompletedTrades int64           `json:"completedTrades"`
	SettledVolume   decimal.Decimal `json:"settledVolume"`
	OpenDisputes    int64           `json:"openDisputes"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}
