package api

import (
	"net/http"

	"studysync-backend/internal/auth/delivery"
	"studysync-backend/pkg/database"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := delivery.NewAuthHandler(h.authUsecase, h.config)
	authRequired := delivery.AuthMiddleware(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			if err := database.Ping(h.db); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.GET("/google", authHandler.GoogleLogin)
			auth.GET("/google/callback", authHandler.GoogleCallback)
			auth.GET("/notion", authRequired, authHandler.NotionLogin)
			auth.GET("/notion/callback", authRequired, authHandler.NotionCallback)
			auth.POST("/logout", authHandler.Logout)
		}

		api.GET("/me", authRequired, authHandler.Me)

		// Course routes (protected)
		courses := api.Group("/courses")
		courses.Use(authRequired)
		{
			courses.GET("", h.courseHandler.ListCourses)
			courses.POST("/sync", h.courseHandler.SyncCourses)
			courses.POST("/materials/sync", h.courseHandler.SyncMaterials)
			courses.POST("/events/sync", h.courseHandler.SyncEvents)
		}

		// Summary routes (protected)
		summaries := api.Group("/summaries")
		summaries.Use(authRequired)
		{
			summaries.GET("", h.summaryHandler.List)
			summaries.POST("/generate", h.summaryHandler.Generate)
		}

		// Notion routes (protected)
		notion := api.Group("/notion")
		notion.Use(authRequired)
		{
			notion.POST("/parent", h.notionHandler.CreateParentPage)
			notion.POST("/pages", h.notionHandler.PublishSummaries)
		}
	}
}
