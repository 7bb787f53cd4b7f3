package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/middleware"
)

// dashboardHandler streams market snapshots to admin dashboards.
type dashboardHandler struct {
	dashboardService portssvc.DashboardSvcFacade
}

func newDashboardHandler(ds portssvc.DashboardSvcFacade) *dashboardHandler {
	return &dashboardHandler{dashboardService: ds}
}

// registerDashboardRoutes registers the admin dashboard routes.
func registerDashboardRoutes(rg *gin.RouterGroup, dashboardService portssvc.DashboardSvcFacade) {
	h := newDashboardHandler(dashboardService)

	dashboard := rg.Group("/dashboard", middleware.AdminOnly())
	{
		dashboard.GET("/snapshot", h.getSnapshot)
		dashboard.GET("/stream", h.stream)
	}
}

// getSnapshot returns the current market aggregate on demand.
func (h *dashboardHandler) getSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	snapshot, err := h.dashboardService.Snapshot(c.Request.Context())
	if err != nil {
		logger.Error("Failed to compute snapshot", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute snapshot"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// stream pushes periodic snapshots over server-sent events until the
// client disconnects.
func (h *dashboardHandler) stream(c *gin.Context) {
	snapshots, cancel := h.dashboardService.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", toSnapshotEvent(snapshot))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func toSnapshotEvent(s domain.MarketSnapshot) gin.H {
	return gin.H{
		"openListings":    s.OpenListings,
		"pendingTrades":   s.PendingTrades,
		"completedTrades": s.CompletedTrades,
		"settledVolume":   s.SettledVolume,
		"openDisputes":    s.OpenDisputes,
		"generatedAt":     s.GeneratedAt,
	}
}
