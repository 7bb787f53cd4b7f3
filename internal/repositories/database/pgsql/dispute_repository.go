package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	"github.com/carbonex/carbon_settlement_app/internal/models"
	"github.com/carbonex/carbon_settlement_app/internal/utils/mapping"
)

type PgxDisputeRepository struct {
	BaseRepository
}

// newPgxDisputeRepository creates a new repository for the dispute
// overlay.
func newPgxDisputeRepository(pool *pgxpool.Pool) portsrepo.DisputeRepositoryFacade {
	return &PgxDisputeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DisputeRepositoryFacade = (*PgxDisputeRepository)(nil)

const selectDisputeColumns = `
	SELECT dispute_id, trade_id, status, resolution, reason, evidence_url, opened_by_user_id, admin_note, opened_at, resolved_at
	FROM disputes
`

// SaveDispute inserts a new dispute. A partial unique index on OPEN
// disputes backs the one-active-dispute-per-trade rule.
func (r *PgxDisputeRepository) SaveDispute(ctx context.Context, dispute domain.Dispute) error {
	modelDispute := mapping.ToModelDispute(dispute)

	query := `
		INSERT INTO disputes (dispute_id, trade_id, status, resolution, reason, evidence_url, opened_by_user_id, admin_note, opened_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	var resolvedAt sql.NullTime
	if modelDispute.ResolvedAt != nil {
		resolvedAt = sql.NullTime{Time: *modelDispute.ResolvedAt, Valid: true}
	}
	_, err := r.Pool.Exec(ctx, query,
		modelDispute.DisputeID,
		modelDispute.TradeID,
		modelDispute.Status,
		modelDispute.Resolution,
		modelDispute.Reason,
		modelDispute.EvidenceURL,
		modelDispute.OpenedByUserID,
		modelDispute.AdminNote,
		modelDispute.OpenedAt,
		resolvedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: trade %s", apperrors.ErrDuplicateDispute, modelDispute.TradeID)
		}
		return fmt.Errorf("failed to save dispute %s: %w", modelDispute.DisputeID, err)
	}
	return nil
}

// FindDisputeByID retrieves a dispute by its ID.
func (r *PgxDisputeRepository) FindDisputeByID(ctx context.Context, disputeID string) (*domain.Dispute, error) {
	query := selectDisputeColumns + " WHERE dispute_id = $1;"

	modelDispute, err := scanDisputeRow(r.Pool.QueryRow(ctx, query, disputeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: dispute %s", apperrors.ErrNotFound, disputeID)
		}
		return nil, fmt.Errorf("failed to find dispute %s: %w", disputeID, err)
	}

	dispute := mapping.ToDomainDispute(*modelDispute)
	return &dispute, nil
}

// HasActiveDispute reports whether the trade already carries an OPEN
// dispute.
func (r *PgxDisputeRepository) HasActiveDispute(ctx context.Context, tradeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM disputes WHERE trade_id = $1 AND status = $2
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, tradeID, models.DisputeOpen).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active dispute for trade %s: %w", tradeID, err)
	}
	return exists, nil
}

// CloseDispute stamps the terminal status, resolution and note. The
// update is conditional on the dispute still being OPEN.
func (r *PgxDisputeRepository) CloseDispute(ctx context.Context, disputeID string, status domain.DisputeStatus, resolution domain.DisputeResolution, note string, resolvedAt time.Time) error {
	query := `
		UPDATE disputes
		SET status = $1, resolution = $2, admin_note = $3, resolved_at = $4
		WHERE dispute_id = $5 AND status = $6;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, string(status), string(resolution), note, resolvedAt, disputeID, models.DisputeOpen)
	if err != nil {
		return fmt.Errorf("failed to close dispute %s: %w", disputeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: dispute %s is not open", apperrors.ErrInvalidState, disputeID)
	}
	return nil
}

// ListDisputesByOpener lists disputes opened by a user, newest first.
func (r *PgxDisputeRepository) ListDisputesByOpener(ctx context.Context, openedByUserID string) ([]domain.Dispute, error) {
	query := selectDisputeColumns + " WHERE opened_by_user_id = $1 ORDER BY opened_at DESC;"
	return r.listDisputes(ctx, query, openedByUserID)
}

// ListDisputesByStatus lists disputes in a given review state, newest
// first.
func (r *PgxDisputeRepository) ListDisputesByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error) {
	query := selectDisputeColumns + " WHERE status = $1 ORDER BY opened_at DESC;"
	return r.listDisputes(ctx, query, string(status))
}

func (r *PgxDisputeRepository) listDisputes(ctx context.Context, query string, arg any) ([]domain.Dispute, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes: %w", err)
	}

	modelDisputes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Dispute, error) {
		d, err := scanDisputeRow(row)
		if err != nil {
			return models.Dispute{}, err
		}
		return *d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan disputes: %w", err)
	}

	return mapping.ToDomainDisputeSlice(modelDisputes), nil
}

func scanDisputeRow(row pgx.Row) (*models.Dispute, error) {
	var modelDispute models.Dispute
	var resolvedAt sql.NullTime
	err := row.Scan(
		&modelDispute.DisputeID,
		&modelDispute.TradeID,
		&modelDispute.Status,
		&modelDispute.Resolution,
		&modelDispute.Reason,
		&modelDispute.EvidenceURL,
		&modelDispute.OpenedByUserID,
		&modelDispute.AdminNote,
		&modelDispute.OpenedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		modelDispute.ResolvedAt = &resolvedAt.Time
	}
	return &modelDispute, nil
}
