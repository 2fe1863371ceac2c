package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parquesmx/backend/internal/models"
)

// Repository handles ad_analytics persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert statements per metric. The guarding SELECT makes the active/window
// check atomic with the write: no row is touched for an ineligible placement.
// Impressions and clicks also bump the running totals on the placement.
const (
	incrImpressions = `WITH target AS (
			SELECT id FROM ad_placements
			WHERE id = $1 AND is_active AND $2::date BETWEEN start_date AND end_date
		), bump AS (
			INSERT INTO ad_analytics (placement_id, date, impressions)
			SELECT id, $2::date, 1 FROM target
			ON CONFLICT (placement_id, date)
			DO UPDATE SET impressions = ad_analytics.impressions + 1
			RETURNING placement_id
		)
		UPDATE ad_placements SET impressions = impressions + 1
		WHERE id IN (SELECT placement_id FROM bump)`

	incrClicks = `WITH target AS (
			SELECT id FROM ad_placements
			WHERE id = $1 AND is_active AND $2::date BETWEEN start_date AND end_date
		), bump AS (
			INSERT INTO ad_analytics (placement_id, date, clicks)
			SELECT id, $2::date, 1 FROM target
			ON CONFLICT (placement_id, date)
			DO UPDATE SET clicks = ad_analytics.clicks + 1
			RETURNING placement_id
		)
		UPDATE ad_placements SET clicks = clicks + 1
		WHERE id IN (SELECT placement_id FROM bump)`

	incrConversions = `INSERT INTO ad_analytics (placement_id, date, conversions)
		SELECT id, $2::date, 1 FROM ad_placements
		WHERE id = $1 AND is_active AND $2::date BETWEEN start_date AND end_date
		ON CONFLICT (placement_id, date)
		DO UPDATE SET conversions = ad_analytics.conversions + 1`
)

// Increment bumps one counter for the (placement, day) row, creating it when
// missing. Returns false without writing when the placement is inactive or the
// day is outside its window.
func (r *Repository) Increment(ctx context.Context, placementID uuid.UUID, day time.Time, metric Metric) (bool, error) {
	var q string
	switch metric {
	case MetricImpressions:
		q = incrImpressions
	case MetricClicks:
		q = incrClicks
	case MetricConversions:
		q = incrConversions
	default:
		return false, fmt.Errorf("unknown metric %q", metric)
	}
	tag, err := r.pool.Exec(ctx, q, placementID, day)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DailyByPlacement returns the per-day rows for a placement, oldest first.
func (r *Repository) DailyByPlacement(ctx context.Context, placementID uuid.UUID) ([]models.AdAnalytics, error) {
	const q = `SELECT id, placement_id, date, impressions, clicks, conversions
		FROM ad_analytics WHERE placement_id = $1 ORDER BY date`
	rows, err := r.pool.Query(ctx, q, placementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AdAnalytics
	for rows.Next() {
		var a models.AdAnalytics
		if err := rows.Scan(&a.ID, &a.PlacementID, &a.Date, &a.Impressions, &a.Clicks, &a.Conversions); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// SummaryByPlacement returns lifetime totals for a placement.
func (r *Repository) SummaryByPlacement(ctx context.Context, placementID uuid.UUID) (*models.AnalyticsSummary, error) {
	const q = `SELECT COALESCE(SUM(impressions), 0), COALESCE(SUM(clicks), 0), COALESCE(SUM(conversions), 0), COUNT(*)
		FROM ad_analytics WHERE placement_id = $1`
	s := models.AnalyticsSummary{PlacementID: placementID}
	err := r.pool.QueryRow(ctx, q, placementID).Scan(&s.Impressions, &s.Clicks, &s.Conversions, &s.Days)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
