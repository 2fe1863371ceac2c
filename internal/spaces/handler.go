package spaces

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parquesmx/backend/internal/models"
	"github.com/parquesmx/backend/pkg/response"
)

// RegisterSpaceRequest is the body for POST /spaces.
type RegisterSpaceRequest struct {
	SpaceKey     string   `json:"space_key" binding:"required"`
	Name         string   `json:"name" binding:"required"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	LocationType string   `json:"location_type" binding:"required"`
	PageTypes    []string `json:"page_types"`
	MaxAds       int      `json:"max_ads"`
}

// Handler handles space catalog HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a spaces handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Register handles POST /spaces (admin only). Duplicate keys are skipped, not errors.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	pageTypes := req.PageTypes
	if len(pageTypes) == 0 {
		pageTypes = []string{models.PageTypeAll}
	}
	maxAds := req.MaxAds
	if maxAds <= 0 {
		maxAds = 1
	}
	space := &models.Space{
		SpaceKey:     req.SpaceKey,
		Name:         req.Name,
		Width:        req.Width,
		Height:       req.Height,
		LocationType: req.LocationType,
		PageTypes:    pageTypes,
		MaxAds:       maxAds,
	}
	inserted, err := h.repo.Register(c.Request.Context(), space)
	if err != nil {
		h.logger.Error("register space failed", zap.Error(err), zap.String("space_key", req.SpaceKey))
		response.Internal(c, "failed to register space")
		return
	}
	if !inserted {
		h.logger.Info("space key already registered, skipped", zap.String("space_key", req.SpaceKey))
		response.OK(c, gin.H{"space_key": req.SpaceKey, "created": false})
		return
	}
	response.Created(c, space)
}

// List handles GET /spaces?page_type=.
func (h *Handler) List(c *gin.Context) {
	var (
		list []models.Space
		err  error
	)
	if pageType := c.Query("page_type"); pageType != "" {
		list, err = h.repo.Resolve(c.Request.Context(), pageType)
	} else {
		list, err = h.repo.List(c.Request.Context())
	}
	if err != nil {
		h.logger.Error("list spaces failed", zap.Error(err))
		response.Internal(c, "failed to list spaces")
		return
	}
	response.OK(c, list)
}
