package routes

import (
	"portal_backend/internal/handlers"
	"portal_backend/internal/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Middlewares - middleware, которые собираются в app и раздаются маршрутам
type Middlewares struct {
	// Auth требует валидную сессию
	Auth gin.HandlerFunc
	// RateLimit ограничивает попытки по IP для конкретного маршрута
	RateLimit func(name string) gin.HandlerFunc
}

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	mw Middlewares,
) {
	api := ginRouter.Group("/api")
	{
		appHandlers.HealthHandler.RegisterRoutes(api)
		appHandlers.AuthHandler.RegisterRoutes(api, mw.Auth, mw.RateLimit)
	}

	protected := api.Group("")
	protected.Use(mw.Auth)
	{
		appHandlers.SiteHandler.RegisterRoutes(protected)
		appHandlers.SettingsHandler.RegisterRoutes(protected)
	}

	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logger.Info("Swagger UI registered", "path", "/swagger/index.html")
}
