package media

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parquesmx/backend/internal/middleware"
	"github.com/parquesmx/backend/pkg/response"
)

// Handler handles creative upload and listing endpoints.
type Handler struct {
	store  *Store
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a media handler.
func NewHandler(store *Store, repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, repo: repo, logger: logger}
}

// Upload handles POST /media/upload (admin only, multipart form field: file).
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "cannot read file")
		return
	}
	defer f.Close()

	var uploadedBy *uuid.UUID
	if v, ok := c.Get(middleware.ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			uploadedBy = &id
		}
	}

	file, err := h.store.Register(c.Request.Context(), Upload{
		Filename:   fileHeader.Filename,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		Size:       fileHeader.Size,
		Body:       f,
		UploadedBy: uploadedBy,
	})
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		response.PayloadTooLarge(c, "file exceeds the upload size limit")
		return
	case errors.Is(err, ErrUnsupportedMediaType):
		response.UnsupportedMediaType(c, "only jpeg, png, gif, webp, mp4 and webm are allowed")
		return
	case err != nil:
		h.logger.Error("media upload failed", zap.Error(err), zap.String("filename", fileHeader.Filename))
		response.Internal(c, "media upload failed")
		return
	}
	response.Created(c, file)
}

// List handles GET /media (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list media failed", zap.Error(err))
		response.Internal(c, "failed to list media files")
		return
	}
	response.OK(c, list)
}
