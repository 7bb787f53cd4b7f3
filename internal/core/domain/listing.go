package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus is the availability state of a marketplace listing.
// RESERVED is the lightweight lock taken by trade creation: a listing
// can carry at most one live trade because only an OPEN listing can be
// reserved, and the reservation is a single conditional update.
type ListingStatus string

const (
	ListingOpen      ListingStatus = "OPEN"
	ListingReserved  ListingStatus = "RESERVED"
	ListingSold      ListingStatus = "SOLD"
	ListingCancelled ListingStatus = "CANCELLED"
	ListingApproved  ListingStatus = "APPROVED"
	ListingRejected  ListingStatus = "REJECTED"
)

// Listing is a carbon-credit sale offer. The settlement engine only ever
// moves its status between OPEN, RESERVED and SOLD; moderation states are
// written by out-of-scope admin actions.
type Listing struct {
	ListingID    string          `json:"listingID"`
	SellerID     string          `json:"sellerID"`
	Title        string          `json:"title"`
	CreditLotID  string          `json:"creditLotID"`
	CarbonAmount decimal.Decimal `json:"carbonAmount"`
	Price        decimal.Decimal `json:"price"`
	Status       ListingStatus   `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}
