package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parquesmx/backend/internal/models"
	"github.com/parquesmx/backend/pkg/storage"
)

var (
	// ErrUnsupportedMediaType is returned for MIME types outside the allowed creative set.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrPayloadTooLarge is returned when the upload exceeds the configured size ceiling.
	ErrPayloadTooLarge = errors.New("file exceeds size limit")
)

// fileStore is the persistence surface Register needs.
type fileStore interface {
	Create(ctx context.Context, m *models.MediaFile) error
	FindByHash(ctx context.Context, hash string) (*models.MediaFile, error)
}

// objectStore uploads creative bytes to durable storage and returns a resolvable URL.
type objectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Upload describes an incoming creative file.
type Upload struct {
	Filename   string
	MimeType   string
	Size       int64
	Body       io.Reader
	Duration   int
	Width      int
	Height     int
	UploadedBy *uuid.UUID
}

// Store registers creatives: validates, deduplicates by content hash, uploads
// to S3, and records the file.
type Store struct {
	repo        fileStore
	objects     objectStore
	maxFileSize int64
	logger      *zap.Logger
}

// NewStore creates a media store.
func NewStore(repo fileStore, objects objectStore, maxFileSize int64, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, objects: objects, maxFileSize: maxFileSize, logger: logger}
}

// Register stores an uploaded creative. Identical bytes map to the existing
// record: dedup is by content hash, not filename.
func (s *Store) Register(ctx context.Context, up Upload) (*models.MediaFile, error) {
	if up.Size > s.maxFileSize {
		return nil, ErrPayloadTooLarge
	}
	contentType := up.MimeType
	if _, ok := storage.AllowedMediaTypes[contentType]; !ok {
		contentType = storage.ContentTypeForFilename(up.Filename)
		if _, ok := storage.AllowedMediaTypes[contentType]; !ok {
			return nil, ErrUnsupportedMediaType
		}
	}

	data, err := io.ReadAll(io.LimitReader(up.Body, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, ErrPayloadTooLarge
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	existing, err := s.repo.FindByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("lookup by hash: %w", err)
	}
	if existing != nil {
		s.logger.Info("media dedup hit", zap.String("content_hash", hash), zap.String("id", existing.ID.String()))
		return existing, nil
	}

	key := storage.MediaKey(hash, up.Filename)
	url, err := s.objects.Upload(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	file := &models.MediaFile{
		Filename:    up.Filename,
		MimeType:    contentType,
		FileSize:    int64(len(data)),
		URL:         url,
		S3Key:       key,
		MediaType:   models.MediaTypeForMime(contentType),
		Duration:    up.Duration,
		Width:       up.Width,
		Height:      up.Height,
		ContentHash: hash,
		UploadedBy:  up.UploadedBy,
	}
	if err := s.repo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("persist media: %w", err)
	}
	return file, nil
}
