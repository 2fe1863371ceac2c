package finance

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parquesmx/backend/pkg/response"
)

// Handler exposes the concession finance integration endpoints consumed by the
// admin UI.
type Handler struct {
	engine *Engine
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a finance handler.
func NewHandler(engine *Engine, repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, repo: repo, logger: logger}
}

// SyncContracts handles POST /concessions-finance/sync (admin only). Errors on
// individual contracts are counted, never surfaced as a failed request.
func (h *Handler) SyncContracts(c *gin.Context) {
	result, err := h.engine.SyncAllContracts(c.Request.Context())
	if err != nil {
		h.logger.Error("contract batch sync failed", zap.Error(err))
		response.Internal(c, "contract sync failed")
		return
	}
	response.OK(c, result)
}

// SyncPayments handles POST /concessions-finance-integration/sync-all (admin only).
func (h *Handler) SyncPayments(c *gin.Context) {
	result, err := h.engine.SyncAllPayments(c.Request.Context())
	if err != nil {
		h.logger.Error("payment batch sync failed", zap.Error(err))
		response.Internal(c, "payment sync failed")
		return
	}
	response.OK(c, result)
}

// Dashboard handles GET /concessions-finance-integration/dashboard (admin only).
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.repo.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.Error("integration dashboard failed", zap.Error(err))
		response.Internal(c, "failed to load dashboard")
		return
	}
	response.OK(c, stats)
}

// PaymentSyncStatus handles GET /concessions-finance-integration/payment/:id/status (admin only).
func (h *Handler) PaymentSyncStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}
	status, err := h.engine.GetPaymentStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			response.NotFound(c, "payment not found")
			return
		}
		h.logger.Error("payment status failed", zap.Error(err), zap.String("payment_id", id.String()))
		response.Internal(c, "failed to load payment status")
		return
	}
	response.OK(c, status)
}
