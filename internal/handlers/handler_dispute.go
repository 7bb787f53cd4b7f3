package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/dto"
	"github.com/carbonex/carbon_settlement_app/internal/middleware"
)

// disputeHandler handles HTTP requests related to disputes.
type disputeHandler struct {
	disputeService portssvc.DisputeSvcFacade
}

func newDisputeHandler(ds portssvc.DisputeSvcFacade) *disputeHandler {
	return &disputeHandler{disputeService: ds}
}

// registerDisputeRoutes registers routes related to disputes.
// Resolution and rejection are admin operations.
func registerDisputeRoutes(rg *gin.RouterGroup, disputeService portssvc.DisputeSvcFacade) {
	h := newDisputeHandler(disputeService)

	disputes := rg.Group("/disputes")
	{
		disputes.POST("", h.openDispute)
		disputes.GET("/:disputeID", h.getDispute)
		disputes.GET("", h.listDisputes)
		disputes.POST("/:disputeID/resolve", middleware.AdminOnly(), h.resolveDispute)
		disputes.POST("/:disputeID/reject", middleware.AdminOnly(), h.rejectDispute)
	}
}

// openDispute opens a dispute against a completed trade the caller was
// party to.
func (h *disputeHandler) openDispute(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	callerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenDispute", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	dispute, err := h.disputeService.OpenDispute(c.Request.Context(), portssvc.OpenDisputeRequest{
		TradeID:        req.TradeID,
		Reason:         req.Reason,
		EvidenceURL:    req.EvidenceURL,
		OpenedByUserID: callerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicateDispute):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to open dispute", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open dispute"})
		}
		return
	}

	logger.Info("Dispute opened", slog.String("dispute_id", dispute.DisputeID))
	c.JSON(http.StatusCreated, dto.ToDisputeResponse(dispute))
}

// getDispute returns one dispute.
func (h *disputeHandler) getDispute(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	disputeID := c.Param("disputeID")

	dispute, err := h.disputeService.GetDispute(c.Request.Context(), disputeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get dispute", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get dispute"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDisputeResponse(dispute))
}

// listDisputes lists the caller's own disputes, or by status for admins.
func (h *disputeHandler) listDisputes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	callerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if status := c.Query("status"); status != "" {
		role, _ := middleware.GetUserRoleFromContext(c)
		if role != middleware.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		disputes, err := h.disputeService.ListDisputesByStatus(c.Request.Context(), domain.DisputeStatus(status))
		if err != nil {
			logger.Error("Failed to list disputes by status", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list disputes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"disputes": dto.ToListDisputeResponse(disputes)})
		return
	}

	disputes, err := h.disputeService.ListDisputesByOpener(c.Request.Context(), callerID)
	if err != nil {
		logger.Error("Failed to list disputes", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list disputes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"disputes": dto.ToListDisputeResponse(disputes)})
}

// resolveDispute closes a dispute with an outcome.
func (h *disputeHandler) resolveDispute(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	disputeID := c.Param("disputeID")

	var req dto.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ResolveDispute", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	dispute, err := h.disputeService.ResolveDispute(c.Request.Context(), disputeID, domain.DisputeResolution(req.Resolution), req.Note)
	if err != nil {
		h.respondCloseError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDisputeResponse(dispute))
}

// rejectDispute closes a dispute without granting it.
func (h *disputeHandler) rejectDispute(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	disputeID := c.Param("disputeID")

	var req dto.RejectDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RejectDispute", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	dispute, err := h.disputeService.RejectDispute(c.Request.Context(), disputeID, req.Note)
	if err != nil {
		h.respondCloseError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDisputeResponse(dispute))
}

func (h *disputeHandler) respondCloseError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to close dispute", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close dispute"})
	}
}
