package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wildlife-threat-api/pkg/services"
)

// MonitoringHandler exposes the aggregated request log.
type MonitoringHandler struct {
	Service *services.MonitoringService
}

func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		Service: service,
	}
}

// GetLogs aggregates the request log over period (1h, 24h or 7d; default 24h).
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	var hours int
	switch c.DefaultQuery("period", "24h") {
	case "1h":
		hours = 1
	case "7d":
		hours = 24 * 7
	default:
		hours = 24
	}

	c.JSON(http.StatusOK, h.Service.GetDashboardData(hours))
}
