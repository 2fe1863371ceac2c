package placements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parquesmx/backend/internal/models"
)

// Store is the persistence surface the scheduler works against. InTx runs fn
// with a Store bound to one transaction so the capacity check and insert are
// atomic.
type Store interface {
	InTx(ctx context.Context, fn func(Store) error) error
	SpaceForUpdate(ctx context.Context, id uuid.UUID) (*models.Space, error)
	AdExists(ctx context.Context, id uuid.UUID) (bool, error)
	CountOverlapping(ctx context.Context, spaceID uuid.UUID, pageType string, pageID *string, start, end time.Time) (int, error)
	Insert(ctx context.Context, p *models.Placement) error
	SetInactive(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Placement, error)
	ActiveForPage(ctx context.Context, pageType string, pageID *string, date time.Time) ([]models.RankedPlacement, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements Store on PostgreSQL.
type Repository struct {
	db   querier
	pool *pgxpool.Pool
}

// NewRepository creates a placements repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// InTx runs fn inside a transaction. Nested calls reuse the open transaction.
func (r *Repository) InTx(ctx context.Context, fn func(Store) error) error {
	if r.pool == nil {
		return fn(r)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SpaceForUpdate loads a space and, inside a transaction, takes a row lock so
// concurrent schedule calls for the same space serialize. Returns nil when absent.
func (r *Repository) SpaceForUpdate(ctx context.Context, id uuid.UUID) (*models.Space, error) {
	const q = `SELECT id, space_key, name, width, height, location_type, page_types, max_ads, status, created_at
		FROM ad_spaces WHERE id = $1 FOR UPDATE`
	var s models.Space
	err := r.db.QueryRow(ctx, q, id).Scan(&s.ID, &s.SpaceKey, &s.Name, &s.Width, &s.Height,
		&s.LocationType, &s.PageTypes, &s.MaxAds, &s.Status, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AdExists reports whether an advertisement exists.
func (r *Repository) AdExists(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM advertisements WHERE id = $1)`
	var ok bool
	err := r.db.QueryRow(ctx, q, id).Scan(&ok)
	return ok, err
}

// CountOverlapping counts active placements for the slot whose windows overlap [start, end].
func (r *Repository) CountOverlapping(ctx context.Context, spaceID uuid.UUID, pageType string, pageID *string, start, end time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM ad_placements
		WHERE space_id = $1 AND page_type = $2 AND page_id IS NOT DISTINCT FROM $3
		AND is_active AND start_date <= $5 AND end_date >= $4`
	var n int
	err := r.db.QueryRow(ctx, q, spaceID, pageType, pageID, start, end).Scan(&n)
	return n, err
}

// Insert persists a placement.
func (r *Repository) Insert(ctx context.Context, p *models.Placement) error {
	const q = `INSERT INTO ad_placements (ad_id, space_id, page_type, page_id, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, impressions, clicks, created_at`
	return r.db.QueryRow(ctx, q, p.AdID, p.SpaceID, p.PageType, p.PageID, p.StartDate, p.EndDate, p.IsActive).
		Scan(&p.ID, &p.Impressions, &p.Clicks, &p.CreatedAt)
}

// SetInactive deactivates a placement. Deactivating twice is a no-op; the bool
// reports whether the placement exists.
func (r *Repository) SetInactive(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE ad_placements SET is_active = FALSE WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetByID returns a placement by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Placement, error) {
	const q = `SELECT id, ad_id, space_id, page_type, page_id, start_date, end_date, is_active, impressions, clicks, created_at
		FROM ad_placements WHERE id = $1`
	var p models.Placement
	err := r.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.AdID, &p.SpaceID, &p.PageType, &p.PageID,
		&p.StartDate, &p.EndDate, &p.IsActive, &p.Impressions, &p.Clicks, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ActiveForPage returns renderable placements for a page, joined with ad,
// campaign and space data, ordered by campaign priority then creation order.
// A NULL page_id placement serves every page of its page type.
func (r *Repository) ActiveForPage(ctx context.Context, pageType string, pageID *string, date time.Time) ([]models.RankedPlacement, error) {
	const q = `SELECT p.id, p.ad_id, p.space_id, p.page_type, p.page_id, p.start_date, p.end_date,
			p.is_active, p.impressions, p.clicks, p.created_at,
			a.title, a.link_url,
			CASE WHEN a.storage_type = 'url' THEN COALESCE(a.image_url, '') ELSE COALESCE(m.url, '') END,
			a.media_type, s.space_key, c.priority, c.id
		FROM ad_placements p
		JOIN advertisements a ON a.id = p.ad_id
		JOIN ad_campaigns c ON c.id = a.campaign_id
		JOIN ad_spaces s ON s.id = p.space_id
		LEFT JOIN ad_media_files m ON m.id = a.media_file_id
		WHERE p.page_type = $1
		AND (p.page_id IS NULL OR p.page_id = $2)
		AND p.is_active AND $3 BETWEEN p.start_date AND p.end_date
		AND a.is_active AND c.status = 'active'
		ORDER BY c.priority DESC, p.created_at ASC`
	rows, err := r.db.Query(ctx, q, pageType, pageID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.RankedPlacement
	for rows.Next() {
		var rp models.RankedPlacement
		if err := rows.Scan(&rp.ID, &rp.AdID, &rp.SpaceID, &rp.PageType, &rp.PageID,
			&rp.StartDate, &rp.EndDate, &rp.IsActive, &rp.Impressions, &rp.Clicks, &rp.CreatedAt,
			&rp.AdTitle, &rp.LinkURL, &rp.MediaURL, &rp.MediaType, &rp.SpaceKey,
			&rp.CampaignPriority, &rp.CampaignID); err != nil {
			return nil, err
		}
		list = append(list, rp)
	}
	return list, rows.Err()
}
