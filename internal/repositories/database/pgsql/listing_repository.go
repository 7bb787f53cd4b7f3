package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	"github.com/carbonex/carbon_settlement_app/internal/models"
	"github.com/carbonex/carbon_settlement_app/internal/utils/mapping"
)

type PgxListingRepository struct {
	BaseRepository
}

// newPgxListingRepository creates a new repository for listing reads.
func newPgxListingRepository(pool *pgxpool.Pool) portsrepo.ListingRepositoryFacade {
	return &PgxListingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ListingRepositoryFacade = (*PgxListingRepository)(nil)

const selectListingColumns = `
	SELECT listing_id, seller_id, title, credit_lot_id, carbon_amount, price, status, created_at
	FROM listings
`

// FindListingByID retrieves a listing by its ID.
func (r *PgxListingRepository) FindListingByID(ctx context.Context, listingID string) (*domain.Listing, error) {
	query := selectListingColumns + " WHERE listing_id = $1;"

	var modelListing models.Listing
	err := r.Pool.QueryRow(ctx, query, listingID).Scan(
		&modelListing.ListingID,
		&modelListing.SellerID,
		&modelListing.Title,
		&modelListing.CreditLotID,
		&modelListing.CarbonAmount,
		&modelListing.Price,
		&modelListing.Status,
		&modelListing.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: listing %s", apperrors.ErrNotFound, listingID)
		}
		return nil, fmt.Errorf("failed to find listing %s: %w", listingID, err)
	}

	listing := mapping.ToDomainListing(modelListing)
	return &listing, nil
}

// ListListingsBySeller returns the seller's most recent listings.
func (r *PgxListingRepository) ListListingsBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Listing, error) {
	query := selectListingColumns + " WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2;"

	rows, err := r.Pool.Query(ctx, query, sellerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings for seller %s: %w", sellerID, err)
	}

	modelListings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Listing, error) {
		var l models.Listing
		err := row.Scan(&l.ListingID, &l.SellerID, &l.Title, &l.CreditLotID, &l.CarbonAmount, &l.Price, &l.Status, &l.CreatedAt)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan listings for seller %s: %w", sellerID, err)
	}

	listings := make([]domain.Listing, 0, len(modelListings))
	for _, m := range modelListings {
		listings = append(listings, mapping.ToDomainListing(m))
	}
	return listings, nil
}
