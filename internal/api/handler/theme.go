package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/themeboard/internal/service"
)

// ThemeHandler serves the grouped and plotted views and triggers runs.
type ThemeHandler struct {
	themeService *service.ThemeService
}

// NewThemeHandler creates a new theme handler.
func NewThemeHandler(themeService *service.ThemeService) *ThemeHandler {
	return &ThemeHandler{
		themeService: themeService,
	}
}

// ListThemes handles GET /api/v1/themes.
func (h *ThemeHandler) ListThemes(c *gin.Context) {
	groups, err := h.themeService.ThemeGroups(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to group comments", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"themes": groups,
		"total":  len(groups),
	})
}

// Map handles GET /api/v1/themes/map.
func (h *ThemeHandler) Map(c *gin.Context) {
	points, err := h.themeService.MapPoints(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to load theme map", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"points": points,
	})
}

// Reclassify handles POST /api/v1/themes/reclassify.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes the run summary).
func (h *ThemeHandler) Reclassify(c *gin.Context) {
	summary, err := h.themeService.ReclassifyAll(c.Request.Context())
	if err != nil {
		respondError(c, "Reclassification failed", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Status handles GET /api/v1/themes/status.
func (h *ThemeHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.themeService.Status())
}
