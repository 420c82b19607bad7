package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"knowledgehub/internal/api/chat"
	"knowledgehub/internal/api/documents"
	"knowledgehub/internal/api/middleware"
	"knowledgehub/internal/config"
	"knowledgehub/internal/repository"
	"knowledgehub/internal/service"
)

// Services bundles the application services the API exposes.
type Services struct {
	Ingest    *service.IngestService
	Documents *service.DocumentService
	Chat      *service.ChatService
	Users     *repository.UserRepository
}

// SetupRouter builds the HTTP router
func SetupRouter(cfg *config.Config, svc Services, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.AllowOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.Auth(svc.Users, cfg.Auth.ServiceKey))

	documentsHandler := documents.NewHandler(svc.Ingest, svc.Documents, logger)
	documentsHandler.RegisterRoutes(apiGroup)

	chatGroup := apiGroup.Group("")
	if cfg.RateLimit.Enabled {
		chatGroup.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerHour))
	}
	chatHandler := chat.NewHandler(svc.Chat, logger)
	chatHandler.RegisterRoutes(chatGroup)

	return router
}
