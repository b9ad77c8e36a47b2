package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/themeboard/internal/api/handler"
	"github.com/timmy/themeboard/internal/api/middleware"
	"github.com/timmy/themeboard/internal/config"
	"github.com/timmy/themeboard/internal/logger"
	"github.com/timmy/themeboard/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	themeService *service.ThemeService,
	cfg *config.ServerConfig,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler(themeService)
	commentHandler := handler.NewCommentHandler(themeService)
	themeHandler := handler.NewThemeHandler(themeService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Comments
		v1.GET("/comments", commentHandler.ListComments)
		v1.GET("/comments/:id", commentHandler.GetComment)
		v1.POST("/comments", commentHandler.SubmitComment)
		v1.POST("/comments/:id/upvote", commentHandler.Upvote)
		v1.POST("/comments/:id/replies", commentHandler.AddReply)

		// Themes
		v1.GET("/themes", themeHandler.ListThemes)
		v1.GET("/themes/map", themeHandler.Map)
		v1.GET("/themes/status", themeHandler.Status)
		v1.POST("/themes/reclassify", themeHandler.Reclassify)
	}

	return r
}
