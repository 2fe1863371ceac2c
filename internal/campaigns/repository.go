package campaigns

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parquesmx/backend/internal/models"
)

// Repository handles campaign and advertisement persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a campaigns repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a campaign.
func (r *Repository) Create(ctx context.Context, cmp *models.Campaign) error {
	const q = `INSERT INTO ad_campaigns (name, client, description, start_date, end_date, budget, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, cmp.Name, cmp.Client, cmp.Description, cmp.StartDate, cmp.EndDate,
		cmp.Budget, cmp.Priority, cmp.Status).
		Scan(&cmp.ID, &cmp.CreatedAt, &cmp.UpdatedAt)
}

// GetByID returns a campaign by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	const q = `SELECT id, name, client, description, start_date, end_date, budget, priority, status, created_at, updated_at
		FROM ad_campaigns WHERE id = $1`
	var cmp models.Campaign
	err := r.pool.QueryRow(ctx, q, id).Scan(&cmp.ID, &cmp.Name, &cmp.Client, &cmp.Description,
		&cmp.StartDate, &cmp.EndDate, &cmp.Budget, &cmp.Priority, &cmp.Status, &cmp.CreatedAt, &cmp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cmp, nil
}

// List returns campaigns filtered by optional status and client.
func (r *Repository) List(ctx context.Context, status, client string) ([]models.Campaign, error) {
	const q = `SELECT id, name, client, description, start_date, end_date, budget, priority, status, created_at, updated_at
		FROM ad_campaigns
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR client = $2)
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, status, client)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Campaign
	for rows.Next() {
		var cmp models.Campaign
		if err := rows.Scan(&cmp.ID, &cmp.Name, &cmp.Client, &cmp.Description, &cmp.StartDate, &cmp.EndDate,
			&cmp.Budget, &cmp.Priority, &cmp.Status, &cmp.CreatedAt, &cmp.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, cmp)
	}
	return list, rows.Err()
}

// UpdateStatus sets a campaign's status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	const q = `UPDATE ad_campaigns SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, status, id)
	return err
}

// CreateAd inserts an advertisement under a campaign.
func (r *Repository) CreateAd(ctx context.Context, a *models.Advertisement) error {
	const q = `INSERT INTO advertisements (campaign_id, title, content, storage_type, image_url, media_file_id, link_url, media_type, priority, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`
	var imageURL *string
	var mediaFileID *uuid.UUID
	if a.Media.StorageType == models.StorageURL {
		imageURL = &a.Media.URL
	} else {
		mediaFileID = &a.Media.MediaFileID
	}
	return r.pool.QueryRow(ctx, q, a.CampaignID, a.Title, a.Content, a.Media.StorageType, imageURL, mediaFileID,
		a.LinkURL, a.MediaType, a.Priority, a.Status, a.IsActive).
		Scan(&a.ID, &a.CreatedAt)
}

// ListAdsByCampaign returns all advertisements for a campaign.
func (r *Repository) ListAdsByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.Advertisement, error) {
	const q = `SELECT id, campaign_id, title, content, storage_type, COALESCE(image_url,''), media_file_id, link_url, media_type, priority, status, is_active, created_at
		FROM advertisements WHERE campaign_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Advertisement
	for rows.Next() {
		var a models.Advertisement
		var mediaFileID *uuid.UUID
		if err := rows.Scan(&a.ID, &a.CampaignID, &a.Title, &a.Content, &a.Media.StorageType, &a.Media.URL,
			&mediaFileID, &a.LinkURL, &a.MediaType, &a.Priority, &a.Status, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		if mediaFileID != nil {
			a.Media.MediaFileID = *mediaFileID
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ToggleAd flips is_active for an advertisement.
func (r *Repository) ToggleAd(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE advertisements SET is_active = NOT is_active WHERE id = $1 RETURNING is_active`
	var active bool
	if err := r.pool.QueryRow(ctx, q, id).Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}
