package handlers

import (
	"context"
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

// tradeHandler handles HTTP requests related to trades.
type tradeHandler struct {
	tradeService portssvc.TradeSvcFacade
}

func newTradeHandler(ts portssvc.TradeSvcFacade) *tradeHandler {
	return &tradeHandler{tradeService: ts}
}

// registerTradeRoutes registers routes related to trades.
func registerTradeRoutes(rg *gin.RouterGroup, tradeService portssvc.TradeSvcFacade) {
	h := newTradeHandler(tradeService)

	trades := rg.Group("/trades")
	{
		trades.POST("", h.createTrade)
		trades.GET("/:tradeID", h.getTrade)
		trades.POST("/:tradeID/confirm", h.confirmTrade)
		trades.POST("/:tradeID/cancel", h.cancelTrade)
		trades.GET("", h.listTrades)
	}

	listings := rg.Group("/listings")
	{
		listings.GET("/:listingID", h.getListing)
		listings.GET("", h.listListings)
	}
}

// createTrade starts a trade against an open listing: the listing is
// reserved and a PENDING trade created, together.
func (h *tradeHandler) createTrade(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	buyerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTrade", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trade, err := h.tradeService.CreateTrade(c.Request.Context(), req.ListingID, buyerID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrListingUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrSelfTradeForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create trade", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trade"})
		}
		return
	}

	logger.Info("Trade created", slog.String("trade_id", trade.TradeID))
	c.JSON(http.StatusCreated, dto.ToTradeResponse(trade))
}

// getTrade returns one trade.
func (h *tradeHandler) getTrade(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tradeID := c.Param("tradeID")

	trade, err := h.tradeService.GetTrade(c.Request.Context(), tradeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get trade", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get trade"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTradeResponse(trade))
}

// confirmTrade settles a pending trade. Only the buyer may confirm.
func (h *tradeHandler) confirmTrade(c *gin.Context) {
	h.finishTrade(c, h.tradeService.ConfirmTrade, func(trade *domain.Trade, callerID string) bool {
		return trade.BuyerID == callerID
	})
}

// cancelTrade releases a pending trade's reservation. Either party may
// cancel.
func (h *tradeHandler) cancelTrade(c *gin.Context) {
	h.finishTrade(c, h.tradeService.CancelTrade, func(trade *domain.Trade, callerID string) bool {
		return trade.BuyerID == callerID || trade.SellerID == callerID
	})
}

func (h *tradeHandler) finishTrade(c *gin.Context, finish func(ctx context.Context, tradeID string) (*domain.Trade, error), allowed func(*domain.Trade, string) bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tradeID := c.Param("tradeID")

	callerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	trade, err := h.tradeService.GetTrade(c.Request.Context(), tradeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to load trade", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trade"})
		}
		return
	}
	if !allowed(trade, callerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a permitted party of this trade"})
		return
	}

	trade, err = finish(c.Request.Context(), tradeID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConcurrentModification):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to finish trade", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finish trade"})
		}
		return
	}

	logger.Info("Trade state changed", slog.String("trade_id", trade.TradeID), slog.String("status", string(trade.Status)))
	c.JSON(http.StatusOK, dto.ToTradeResponse(trade))
}

// listTrades lists the caller's trades, as buyer or as seller.
func (h *tradeHandler) listTrades(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	callerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListTradesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var (
		trades []domain.Trade
		err    error
	)
	if c.Query("side") == "seller" {
		trades, err = h.tradeService.ListTradesBySeller(c.Request.Context(), callerID, params.Limit)
	} else {
		trades, err = h.tradeService.ListTradesByBuyer(c.Request.Context(), callerID, params.Limit)
	}
	if err != nil {
		logger.Error("Failed to list trades", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trades"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trades": dto.ToListTradeResponse(trades)})
}

// getListing fetches a single listing.
func (h *tradeHandler) getListing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	listingID := c.Param("listingID")

	listing, err := h.tradeService.GetListing(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get listing", slog.String("listing_id", listingID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

// listListings lists the caller's own listings.
func (h *tradeHandler) listListings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	callerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListTradesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	listings, err := h.tradeService.ListListingsBySeller(c.Request.Context(), callerID, params.Limit)
	if err != nil {
		logger.Error("Failed to list listings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": dto.ToListListingResponse(listings)})
}
