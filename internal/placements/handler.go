package placements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parquesmx/backend/internal/models"
	"github.com/parquesmx/backend/pkg/redis"
	"github.com/parquesmx/backend/pkg/response"
)

const cacheVersionKey = "pageads:ver"

// ScheduleRequestBody is the body for POST /placements.
type ScheduleRequestBody struct {
	AdID      string  `json:"ad_id" binding:"required"`
	SpaceID   string  `json:"space_id" binding:"required"`
	PageType  string  `json:"page_type" binding:"required"`
	PageID    *string `json:"page_id"`
	StartDate string  `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string  `json:"end_date" binding:"required"`
}

// Handler handles placement HTTP endpoints.
type Handler struct {
	scheduler *Scheduler
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewHandler creates a placements handler. cache may be nil to disable page-ad caching.
func NewHandler(scheduler *Scheduler, cache *redis.Client, cacheTTLSeconds int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 60
	}
	return &Handler{
		scheduler: scheduler,
		cache:     cache,
		cacheTTL:  time.Duration(cacheTTLSeconds) * time.Second,
		logger:    logger,
	}
}

// Schedule handles POST /placements (admin only).
func (h *Handler) Schedule(c *gin.Context) {
	var body ScheduleRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	adID, err := uuid.Parse(body.AdID)
	if err != nil {
		response.BadRequest(c, "invalid ad_id")
		return
	}
	spaceID, err := uuid.Parse(body.SpaceID)
	if err != nil {
		response.BadRequest(c, "invalid space_id")
		return
	}
	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		response.BadRequest(c, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		response.BadRequest(c, "invalid end_date, expected YYYY-MM-DD")
		return
	}

	placement, err := h.scheduler.Schedule(c.Request.Context(), ScheduleRequest{
		AdID:      adID,
		SpaceID:   spaceID,
		PageType:  body.PageType,
		PageID:    body.PageID,
		StartDate: start,
		EndDate:   end,
	})
	switch {
	case errors.Is(err, ErrUnknownSpace):
		response.NotFound(c, "space not found")
		return
	case errors.Is(err, ErrUnknownAd):
		response.NotFound(c, "advertisement not found")
		return
	case errors.Is(err, ErrPageTypeNotAllowed):
		response.BadRequest(c, "page type not allowed for this space")
		return
	case errors.Is(err, models.ErrInvalidDateRange):
		response.BadRequest(c, "end_date must not precede start_date")
		return
	case errors.Is(err, ErrSpaceCapacityExceeded):
		response.Conflict(c, "space has no free slot for this page and date window")
		return
	case err != nil:
		h.logger.Error("schedule placement failed", zap.Error(err))
		response.Internal(c, "failed to schedule placement")
		return
	}
	h.bumpCacheVersion(c.Request.Context())
	response.Created(c, placement)
}

// Deactivate handles PATCH /placements/:id/deactivate (admin only). Idempotent.
func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid placement id")
		return
	}
	if err := h.scheduler.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrUnknownPlacement) {
			response.NotFound(c, "placement not found")
			return
		}
		h.logger.Error("deactivate placement failed", zap.Error(err), zap.String("placement_id", id.String()))
		response.Internal(c, "failed to deactivate placement")
		return
	}
	h.bumpCacheVersion(c.Request.Context())
	response.OK(c, gin.H{"id": id, "is_active": false})
}

// PageAds handles GET /pages/:pageType/ads?page_id= (public). Results carry the
// campaign priority so the renderer can apply the tie-break order.
func (h *Handler) PageAds(c *gin.Context) {
	pageType := c.Param("pageType")
	var pageID *string
	if v := c.Query("page_id"); v != "" {
		pageID = &v
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)

	if cached, ok := h.cacheGet(c.Request.Context(), pageType, pageID, today); ok {
		response.OK(c, cached)
		return
	}

	list, err := h.scheduler.ActiveForPage(c.Request.Context(), pageType, pageID, today)
	if err != nil {
		h.logger.Error("resolve page ads failed", zap.Error(err), zap.String("page_type", pageType))
		response.Internal(c, "failed to resolve page ads")
		return
	}
	h.cacheSet(c.Request.Context(), pageType, pageID, today, list)
	response.OK(c, list)
}

func (h *Handler) cacheKey(ctx context.Context, pageType string, pageID *string, date time.Time) string {
	ver := "0"
	if h.cache != nil {
		if v, err := h.cache.Get(ctx, cacheVersionKey).Result(); err == nil {
			ver = v
		}
	}
	pid := ""
	if pageID != nil {
		pid = *pageID
	}
	return fmt.Sprintf("pageads:%s:%s:%s:%s", ver, pageType, pid, date.Format("2006-01-02"))
}

func (h *Handler) cacheGet(ctx context.Context, pageType string, pageID *string, date time.Time) ([]models.RankedPlacement, bool) {
	if h.cache == nil {
		return nil, false
	}
	raw, err := h.cache.Get(ctx, h.cacheKey(ctx, pageType, pageID, date)).Bytes()
	if err != nil {
		return nil, false
	}
	var list []models.RankedPlacement
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list, true
}

func (h *Handler) cacheSet(ctx context.Context, pageType string, pageID *string, date time.Time, list []models.RankedPlacement) {
	if h.cache == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, h.cacheKey(ctx, pageType, pageID, date), raw, h.cacheTTL).Err(); err != nil {
		h.logger.Warn("page ads cache set failed", zap.Error(err))
	}
}

// bumpCacheVersion invalidates all cached page-ad lists by rotating the
// version embedded in cache keys.
func (h *Handler) bumpCacheVersion(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Incr(ctx, cacheVersionKey).Err(); err != nil {
		h.logger.Warn("page ads cache invalidation failed", zap.Error(err))
	}
}
