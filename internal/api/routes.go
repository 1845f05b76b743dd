package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *APIHandler) {
	apiGroup := router.Group("/api")

	// --- Generation ---
	apiGroup.POST("/generate", h.Generate)              // Initial generation or iterative change
	apiGroup.POST("/generate/preview", h.Preview)       // Re-derive preview code for a file selection
	apiGroup.POST("/generate/single", h.GenerateSingle) // Single-file / blueprint workflow

	// --- Previews ---
	apiGroup.POST("/create-gist", h.CreateGist)                  // Publish Flutter preview code for DartPad
	apiGroup.POST("/preview/react-native", h.ReactNativePreview) // Iframe document for React Native previews

	// --- Saved Projects ---
	// Scoped by the X-User-ID header.
	projectGroup := apiGroup.Group("/projects")
	{
		projectGroup.GET("", h.ListProjects)
		projectGroup.POST("", h.CreateProject)
		projectGroup.GET("/:id", h.GetProject)
		projectGroup.PATCH("/:id", h.UpdateProject)
		projectGroup.DELETE("/:id", h.DeleteProject)
	}

	// --- Simple Health Check ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
