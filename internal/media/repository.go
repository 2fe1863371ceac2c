package media

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parquesmx/backend/internal/models"
)

// Repository handles ad_media_files persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a media repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const mediaColumns = `id, filename, mime_type, file_size, url, s3_key, media_type, duration, width, height, content_hash, uploaded_by, status, created_at`

func scanMediaFile(row pgx.Row, m *models.MediaFile) error {
	return row.Scan(&m.ID, &m.Filename, &m.MimeType, &m.FileSize, &m.URL, &m.S3Key, &m.MediaType,
		&m.Duration, &m.Width, &m.Height, &m.ContentHash, &m.UploadedBy, &m.Status, &m.CreatedAt)
}

// Create inserts a media file record.
func (r *Repository) Create(ctx context.Context, m *models.MediaFile) error {
	const q = `INSERT INTO ad_media_files (filename, mime_type, file_size, url, s3_key, media_type, duration, width, height, content_hash, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, status, created_at`
	return r.pool.QueryRow(ctx, q, m.Filename, m.MimeType, m.FileSize, m.URL, m.S3Key, m.MediaType,
		m.Duration, m.Width, m.Height, m.ContentHash, m.UploadedBy).
		Scan(&m.ID, &m.Status, &m.CreatedAt)
}

// FindByHash returns the media file with the given content hash, or nil when absent.
func (r *Repository) FindByHash(ctx context.Context, hash string) (*models.MediaFile, error) {
	const q = `SELECT ` + mediaColumns + ` FROM ad_media_files WHERE content_hash = $1`
	var m models.MediaFile
	err := scanMediaFile(r.pool.QueryRow(ctx, q, hash), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID returns a media file by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	const q = `SELECT ` + mediaColumns + ` FROM ad_media_files WHERE id = $1`
	var m models.MediaFile
	if err := scanMediaFile(r.pool.QueryRow(ctx, q, id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns all media files, newest first.
func (r *Repository) List(ctx context.Context) ([]models.MediaFile, error) {
	const q = `SELECT ` + mediaColumns + ` FROM ad_media_files ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.MediaFile
	for rows.Next() {
		var m models.MediaFile
		if err := rows.Scan(&m.ID, &m.Filename, &m.MimeType, &m.FileSize, &m.URL, &m.S3Key, &m.MediaType,
			&m.Duration, &m.Width, &m.Height, &m.ContentHash, &m.UploadedBy, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
