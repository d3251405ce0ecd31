package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/homelink/pkg/api/types"
	"github.com/urmzd/homelink/pkg/device"
	"github.com/urmzd/homelink/pkg/homegraph"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	registry *device.Registry
	notifier homegraph.Notifier
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *device.Registry, notifier homegraph.Notifier) *HealthHandler {
	return &HealthHandler{registry: registry, notifier: notifier}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health status of the service and whether Home Graph calls are configured
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	homeGraph := "not_configured"
	if h.notifier.IsConfigured() {
		homeGraph = "configured"
	}

	c.JSON(http.StatusOK, types.HealthResponse{
		Status:    "healthy",
		Devices:   h.registry.Len(),
		HomeGraph: homeGraph,
		Timestamp: time.Now(),
	})
}
