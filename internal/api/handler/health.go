package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/themeboard/internal/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	themeService *service.ThemeService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(themeService *service.ThemeService) *HealthHandler {
	return &HealthHandler{themeService: themeService}
}

// Health returns the health status of the service and the classifier stage.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"stage":  h.themeService.Status().Stage,
	})
}
