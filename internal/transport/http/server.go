package http

import (
	"github.com/gin-gonic/gin"

	"ragserve/internal/bootstrap"
	"ragserve/internal/transport/http/handler"
	"ragserve/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	ragHandler := handler.NewRAGHandler(app.Ingest, app.Retrieval, app.Documents, app.IngestPublisher)
	settingsHandler := handler.NewSettingsHandler(app.Settings, app.SettingsCache)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))

	ragGroup := v1.Group("/rag")
	ragGroup.POST("/documents", ragHandler.IngestDocument)
	ragGroup.POST("/documents/upload", ragHandler.UploadDocument)
	ragGroup.GET("/documents", ragHandler.ListDocuments)
	ragGroup.DELETE("/documents/:id", ragHandler.DeleteDocument)
	ragGroup.POST("/query", ragHandler.Query)
	ragGroup.GET("/chats/:id/stats", ragHandler.ChatStats)
	ragGroup.GET("/workspaces/:id/stats", ragHandler.WorkspaceStats)
	ragGroup.GET("/settings", settingsHandler.Get)
	ragGroup.PUT("/settings", settingsHandler.Update)

	return router
}
