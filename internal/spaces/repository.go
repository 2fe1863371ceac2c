package spaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parquesmx/backend/internal/models"
)

// Repository handles ad space catalog persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a spaces repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const spaceColumns = `id, space_key, name, width, height, location_type, page_types, max_ads, status, created_at`

// Register inserts a space. A duplicate space_key is silently skipped
// (re-seeding friendly); the returned bool reports whether a row was inserted.
func (r *Repository) Register(ctx context.Context, s *models.Space) (bool, error) {
	const q = `INSERT INTO ad_spaces (space_key, name, width, height, location_type, page_types, max_ads)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (space_key) DO NOTHING
		RETURNING id, status, created_at`
	rows, err := r.pool.Query(ctx, q, s.SpaceKey, s.Name, s.Width, s.Height, s.LocationType, s.PageTypes, s.MaxAds)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return false, rows.Err()
	}
	if err := rows.Scan(&s.ID, &s.Status, &s.CreatedAt); err != nil {
		return false, err
	}
	return true, rows.Err()
}

// Resolve returns all spaces allowed on the given page type, including
// wildcard ("all") spaces.
func (r *Repository) Resolve(ctx context.Context, pageType string) ([]models.Space, error) {
	const q = `SELECT ` + spaceColumns + ` FROM ad_spaces
		WHERE status = 'active' AND ($1 = ANY(page_types) OR 'all' = ANY(page_types))
		ORDER BY space_key`
	return r.queryList(ctx, q, pageType)
}

// List returns every space in the catalog.
func (r *Repository) List(ctx context.Context) ([]models.Space, error) {
	const q = `SELECT ` + spaceColumns + ` FROM ad_spaces ORDER BY space_key`
	return r.queryList(ctx, q)
}

// GetByID returns a space by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Space, error) {
	const q = `SELECT ` + spaceColumns + ` FROM ad_spaces WHERE id = $1`
	var s models.Space
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.SpaceKey, &s.Name, &s.Width, &s.Height,
		&s.LocationType, &s.PageTypes, &s.MaxAds, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) queryList(ctx context.Context, q string, args ...any) ([]models.Space, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Space
	for rows.Next() {
		var s models.Space
		if err := rows.Scan(&s.ID, &s.SpaceKey, &s.Name, &s.Width, &s.Height,
			&s.LocationType, &s.PageTypes, &s.MaxAds, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
