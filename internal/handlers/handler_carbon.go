package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/dto"
	"github.com/carbonex/carbon_settlement_app/internal/middleware"
)

// carbonHandler handles HTTP requests related to carbon wallets.
type carbonHandler struct {
	carbonService portssvc.CarbonSvcFacade
}

func newCarbonHandler(cs portssvc.CarbonSvcFacade) *carbonHandler {
	return &carbonHandler{carbonService: cs}
}

// registerCarbonRoutes registers routes related to carbon holdings.
// Issuance and retirement of credits are admin operations.
func registerCarbonRoutes(rg *gin.RouterGroup, carbonService portssvc.CarbonSvcFacade) {
	h := newCarbonHandler(carbonService)

	carbon := rg.Group("/carbon")
	{
		carbon.GET("/:ownerID/balance", h.getCarbonBalance)
		carbon.GET("/:ownerID/holdings", h.listHoldings)
		carbon.POST("/:ownerID/transfer", h.transferHolding)
		carbon.POST("/:ownerID/issue", middleware.AdminOnly(), h.addHolding)
		carbon.POST("/:ownerID/retire", middleware.AdminOnly(), h.removeHolding)
	}
}

// getCarbonBalance returns the aggregate carbon balance of an account.
func (h *carbonHandler) getCarbonBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID := c.Param("ownerID")

	balance, err := h.carbonService.GetCarbonBalance(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get carbon balance", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get carbon balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.CarbonBalanceResponse{OwnerID: ownerID, Balance: balance})
}

// listHoldings returns the account's per-lot holdings.
func (h *carbonHandler) listHoldings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID := c.Param("ownerID")

	holdings, err := h.carbonService.ListHoldings(c.Request.Context(), ownerID)
	if err != nil {
		logger.Error("Failed to list holdings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list holdings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"holdings": dto.ToListHoldingResponse(holdings)})
}

// addHolding issues credits of a lot into an account.
func (h *carbonHandler) addHolding(c *gin.Context) {
	h.moveHolding(c, h.carbonService.AddHolding, "Credits issued")
}

// removeHolding retires credits of a lot from an account.
func (h *carbonHandler) removeHolding(c *gin.Context) {
	h.moveHolding(c, h.carbonService.RemoveHolding, "Credits retired")
}

func (h *carbonHandler) moveHolding(c *gin.Context, move func(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error, message string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID := c.Param("ownerID")

	var req dto.MoveHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for holding move", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := move(c.Request.Context(), ownerID, req.CreditLotID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientHoldings):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to move holding", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move holding"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// transferHolding moves credits of one lot to another account. Only the
// owner may move their own credits.
func (h *carbonHandler) transferHolding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID := c.Param("ownerID")

	callerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if callerID != ownerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot transfer another account's credits"})
		return
	}

	var req dto.TransferHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for TransferHolding", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	err := h.carbonService.TransferHolding(c.Request.Context(), ownerID, req.ToOwnerID, req.CreditLotID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientHoldings):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to transfer holding", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer holding"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Credits transferred"})
}
