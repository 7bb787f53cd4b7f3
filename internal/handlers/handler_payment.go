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

// paymentHandler handles HTTP requests related to gateway top-ups.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{paymentService: ps}
}

// registerTopupRoutes registers the authenticated top-up routes.
func registerTopupRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	topups := rg.Group("/topups")
	{
		topups.POST("", h.createTopup)
		topups.GET("/:txnRef", h.getTopup)
	}
}

// RegisterGatewayCallbackRoutes registers the unauthenticated callback
// endpoints the payment gateway calls. The browser return URL and the
// server-to-server notification both funnel into the same settlement
// path; signatures replace sessions here.
func RegisterGatewayCallbackRoutes(r *gin.Engine, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	gateway := r.Group("/payments/gateway")
	{
		gateway.GET("/return", h.gatewayReturn)
		gateway.GET("/ipn", h.gatewayNotify)
	}
}

// createTopup starts a top-up and returns the signed redirect URL.
func (h *paymentHandler) createTopup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	ownerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateTopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTopup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	redirect, err := h.paymentService.CreateTopup(c.Request.Context(), portssvc.TopupRequest{
		OwnerID:  ownerID,
		Amount:   req.Amount,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create topup", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create topup"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.TopupRedirectResponse{PaymentURL: redirect.PaymentURL, TxnRef: redirect.TxnRef})
}

// getTopup returns the ledger entry behind a top-up reference.
func (h *paymentHandler) getTopup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	txnRef := c.Param("txnRef")

	entry, err := h.paymentService.GetTopup(c.Request.Context(), txnRef)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get topup", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get topup"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerEntryResponse(entry))
}

// gatewayReturn handles the payer's browser coming back from the
// gateway. It settles the reference if the notification has not done so
// yet and shows the outcome.
func (h *paymentHandler) gatewayReturn(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	params := queryToMap(c)

	if !h.paymentService.VerifyCallback(params) {
		logger.Warn("Return callback with invalid signature")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	if err := h.paymentService.ProcessCallback(c.Request.Context(), params); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrAmountMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to process return callback", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment result"})
		}
		return
	}

	entry, err := h.paymentService.GetTopup(c.Request.Context(), params["txnRef"])
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Payment processed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(entry.Status), "txnRef": params["txnRef"]})
}

// gatewayNotify handles the gateway's server-to-server notification.
// The gateway retries until it sees RspCode "00", so every outcome maps
// to a gateway-style acknowledgement and never to an HTTP error.
func (h *paymentHandler) gatewayNotify(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	params := queryToMap(c)

	if !h.paymentService.VerifyCallback(params) {
		logger.Warn("Notification with invalid signature")
		c.JSON(http.StatusOK, dto.GatewayAckResponse{RspCode: "97", Message: "Invalid signature"})
		return
	}

	// The notification may arrive after the return path settled the
	// reference; the gateway expects "02" rather than a second apply.
	if entry, err := h.paymentService.GetTopup(c.Request.Context(), params["txnRef"]); err == nil && entry.Status != domain.EntryPending {
		c.JSON(http.StatusOK, dto.GatewayAckResponse{RspCode: "02", Message: "Order already confirmed"})
		return
	}

	if err := h.paymentService.ProcessCallback(c.Request.Context(), params); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			c.JSON(http.StatusOK, dto.GatewayAckResponse{RspCode: "01", Message: "Order not found"})
		case errors.Is(err, apperrors.ErrAmountMismatch):
			c.JSON(http.StatusOK, dto.GatewayAckResponse{RspCode: "04", Message: "Invalid amount"})
		default:
			logger.Error("Failed to process notification", slog.String("error", err.Error()))
			c.JSON(http.StatusOK, dto.GatewayAckResponse{RspCode: "99", Message: "Unknown error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.GatewayAckResponse{RspCode: "00", Message: "Confirm success"})
}

// queryToMap flattens the single-valued callback query into the map the
// signer works with.
func queryToMap(c *gin.Context) map[string]string {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}
