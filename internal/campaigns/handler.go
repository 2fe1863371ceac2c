package campaigns

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parquesmx/backend/internal/models"
	"github.com/parquesmx/backend/pkg/response"
)

// CreateCampaignRequest is the body for POST /campaigns.
type CreateCampaignRequest struct {
	Name        string  `json:"name" binding:"required"`
	Client      string  `json:"client"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate     string  `json:"end_date" binding:"required"`
	Budget      float64 `json:"budget"`
	Priority    int     `json:"priority"`
}

// CreateAdRequest is the body for POST /campaigns/:id/ads.
type CreateAdRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content"`
	ImageURL    string `json:"image_url"`
	MediaFileID string `json:"media_file_id"`
	LinkURL     string `json:"link_url"`
	MediaType   string `json:"media_type"`
	Priority    int    `json:"priority"`
}

// Handler handles campaign and advertisement HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a campaigns handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /campaigns (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		response.BadRequest(c, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		response.BadRequest(c, "invalid end_date, expected YYYY-MM-DD")
		return
	}
	cmp := &models.Campaign{
		Name:        req.Name,
		Client:      req.Client,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Budget:      req.Budget,
		Priority:    req.Priority,
		Status:      models.CampaignActive,
	}
	if err := cmp.Validate(); err != nil {
		if errors.Is(err, models.ErrInvalidDateRange) {
			response.BadRequest(c, "end_date must not precede start_date")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.repo.Create(c.Request.Context(), cmp); err != nil {
		h.logger.Error("create campaign failed", zap.Error(err))
		response.Internal(c, "failed to create campaign")
		return
	}
	response.Created(c, cmp)
}

// List handles GET /campaigns?status=&client=.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), c.Query("status"), c.Query("client"))
	if err != nil {
		h.logger.Error("list campaigns failed", zap.Error(err))
		response.Internal(c, "failed to list campaigns")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /campaigns/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return
	}
	cmp, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "campaign not found")
		return
	}
	response.OK(c, cmp)
}

// UpdateStatus handles PATCH /campaigns/:id/status (admin only).
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidCampaignStatus(req.Status) {
		response.BadRequest(c, "unknown status: "+req.Status)
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		h.logger.Error("update campaign status failed", zap.Error(err), zap.String("campaign_id", id.String()))
		response.Internal(c, "failed to update campaign")
		return
	}
	response.OK(c, gin.H{"id": id, "status": req.Status})
}

// CreateAd handles POST /campaigns/:id/ads (admin only).
func (h *Handler) CreateAd(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), campaignID); err != nil {
		response.NotFound(c, "campaign not found")
		return
	}
	var req CreateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var media models.AdMedia
	if req.MediaFileID != "" {
		fileID, err := uuid.Parse(req.MediaFileID)
		if err != nil {
			response.BadRequest(c, "invalid media_file_id")
			return
		}
		media = models.StoredMedia(fileID)
	} else {
		media = models.ExternalMedia(req.ImageURL)
	}
	if err := media.Validate(); err != nil {
		response.BadRequest(c, "exactly one of image_url or media_file_id must be set")
		return
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = models.MediaTypeImage
	}
	ad := &models.Advertisement{
		CampaignID: campaignID,
		Title:      req.Title,
		Content:    req.Content,
		Media:      media,
		LinkURL:    req.LinkURL,
		MediaType:  mediaType,
		Priority:   req.Priority,
		Status:     models.CampaignActive,
		IsActive:   true,
	}
	if err := h.repo.CreateAd(c.Request.Context(), ad); err != nil {
		h.logger.Error("create advertisement failed", zap.Error(err), zap.String("campaign_id", campaignID.String()))
		response.Internal(c, "failed to create advertisement")
		return
	}
	response.Created(c, ad)
}

// ListAds handles GET /campaigns/:id/ads.
func (h *Handler) ListAds(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid campaign id")
		return
	}
	list, err := h.repo.ListAdsByCampaign(c.Request.Context(), campaignID)
	if err != nil {
		h.logger.Error("list ads failed", zap.Error(err))
		response.Internal(c, "failed to list advertisements")
		return
	}
	response.OK(c, list)
}

// ToggleAd handles PATCH /ads/:id/toggle (admin only).
func (h *Handler) ToggleAd(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ad id")
		return
	}
	active, err := h.repo.ToggleAd(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "advertisement not found")
		return
	}
	response.OK(c, gin.H{"id": id, "is_active": active})
}
