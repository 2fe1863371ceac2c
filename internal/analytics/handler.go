package analytics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parquesmx/backend/pkg/response"
)

// Handler handles analytics HTTP endpoints.
type Handler struct {
	recorder *Recorder
	repo     *Repository
	logger   *zap.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(recorder *Recorder, repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{recorder: recorder, repo: repo, logger: logger}
}

// TrackImpression handles POST /placements/:id/impression (public).
func (h *Handler) TrackImpression(c *gin.Context) {
	h.track(c, MetricImpressions)
}

// TrackClick handles POST /placements/:id/click (public).
func (h *Handler) TrackClick(c *gin.Context) {
	h.track(c, MetricClicks)
}

// TrackConversion handles POST /placements/:id/conversion (public).
func (h *Handler) TrackConversion(c *gin.Context) {
	h.track(c, MetricConversions)
}

func (h *Handler) track(c *gin.Context, metric Metric) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid placement id")
		return
	}
	now := time.Now().UTC()
	var trackErr error
	switch metric {
	case MetricImpressions:
		trackErr = h.recorder.RecordImpression(c.Request.Context(), id, now)
	case MetricClicks:
		trackErr = h.recorder.RecordClick(c.Request.Context(), id, now)
	case MetricConversions:
		trackErr = h.recorder.RecordConversion(c.Request.Context(), id, now)
	}
	if trackErr != nil {
		h.logger.Error("track metric failed", zap.Error(trackErr), zap.String("placement_id", id.String()))
		response.Internal(c, "failed to record metric")
		return
	}
	response.NoContent(c)
}

// GetByPlacement handles GET /placements/:id/analytics (admin only).
func (h *Handler) GetByPlacement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid placement id")
		return
	}
	summary, err := h.repo.SummaryByPlacement(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("analytics summary failed", zap.Error(err), zap.String("placement_id", id.String()))
		response.Internal(c, "failed to load analytics")
		return
	}
	daily, err := h.repo.DailyByPlacement(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("analytics daily failed", zap.Error(err), zap.String("placement_id", id.String()))
		response.Internal(c, "failed to load analytics")
		return
	}
	response.OK(c, gin.H{"summary": summary, "daily": daily})
}
