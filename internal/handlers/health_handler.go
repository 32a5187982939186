package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orbitaledge/internal/service"
)

type HealthHandler struct {
	service service.HealthService
}

func NewHealthHandler(service service.HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health answers 200 when every check is up and 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	report := h.service.Check(c.Request.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// Index is the service banner.
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Orbital Edge API is running",
		"endpoints": gin.H{
			"images": "/api/images",
			"orders": "/api/orders",
			"health": "/health",
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":              "Not Found",
		"message":            "Route " + c.Request.Method + " " + c.Request.URL.Path + " does not exist",
		"suggestedEndpoints": []string{"/api/images", "/api/orders"},
	})
}
