package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"portal_backend/database"
	_ "portal_backend/docs"
	"portal_backend/internal/addresslookup"
	"portal_backend/internal/config"
	"portal_backend/internal/email"
	"portal_backend/internal/handlers"
	"portal_backend/internal/logger"
	"portal_backend/internal/middleware"
	"portal_backend/internal/ratelimit"
	"portal_backend/internal/repositories"
	"portal_backend/internal/routes"
	"portal_backend/internal/services"
	"portal_backend/internal/validator"
	"portal_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Deps - внешние зависимости роутера. В тестах подменяются заглушками.
type Deps struct {
	EmailProvider email.Provider
	AddressLookup addresslookup.Lookup
	Limiter       ratelimit.Limiter
}

func Run() {
	cfg := config.GetConfig()
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg.Database, cfg.Server.Env)
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	defer sqlDB.Close()
	if err = sqlDB.PingContext(ctx); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	workers.NewResetCodeWorker(gormDB, repositories.NewUserRepository(), cfg.Security.ResetSweepInterval).Start(ctx)

	deps, cleanup := buildDeps(ctx, cfg)
	defer cleanup()

	ginRouter := SetupRouter(cfg, gormDB, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server stopped")
}

// buildDeps выбирает реализации по конфигурации: SMTP или noop,
// Redis или in-memory лимитер.
func buildDeps(ctx context.Context, cfg *config.Config) (Deps, func()) {
	cleanup := func() {}

	var emailProvider email.Provider = email.NoopProvider{}
	if cfg.Email.SMTPHost != "" {
		templates, err := email.NewDefaultTemplateManager(cfg.Email.TemplatesDir)
		if err != nil {
			logger.Fatal("Failed to load email templates", "error", err)
		}
		smtpProvider := email.NewSMTPProvider(email.FromAppConfig(cfg.Email), templates)
		if err := smtpProvider.Validate(); err != nil {
			logger.Fatal("Invalid SMTP configuration", "error", err)
		}
		emailProvider = smtpProvider
		logger.Info("Email provider initialized", "type", "smtp", "host", cfg.Email.SMTPHost)
	} else {
		logger.Warn("MAIL_SERVER is not set, emails will only be logged")
	}

	var limiter ratelimit.Limiter
	if cfg.Redis.URL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimit.Attempts, cfg.RateLimit.Window)
		cleanup = func() {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close Redis client", "error", err)
			}
		}
		logger.Info("Rate limiter initialized", "type", "redis")
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Attempts, cfg.RateLimit.Window)
		logger.Info("Rate limiter initialized", "type", "memory")
	}

	if cfg.AddressLookup.BaseURL == "" {
		logger.Warn("AMAZON_SITE_API_URL is not set, shipping sync and dashboard are disabled")
	}

	return Deps{
		EmailProvider: emailProvider,
		AddressLookup: addresslookup.NewClient(cfg.AddressLookup),
		Limiter:       limiter,
	}, cleanup
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Сервисы
	serviceContainer := initializeServices(cfg, deps)

	// 2. Хэндлеры
	appHandlers := initializeHandlers(cfg, serviceContainer)

	// 3. Gin
	ginRouter := initializeGinRouter(cfg, gormDB)

	// 4. Маршруты
	routes.RegisterRoutes(ginRouter, appHandlers, routes.Middlewares{
		Auth: middleware.AuthMiddleware(serviceContainer.Sessions, cfg.JWT.CookieName),
		RateLimit: func(name string) gin.HandlerFunc {
			return middleware.RateLimitMiddleware(deps.Limiter, name)
		},
	})

	return ginRouter
}

func initializeServices(cfg *config.Config, deps Deps) *services.ServiceContainer {
	return services.NewServiceContainer(cfg, services.Dependencies{
		EmailProvider: deps.EmailProvider,
		AddressLookup: deps.AddressLookup,
	})
}

func initializeHandlers(cfg *config.Config, container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New(cfg.Security.AllowedEmailDomains)
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		HealthHandler: handlers.NewHealthHandler(baseHandler),
		AuthHandler: handlers.NewAuthHandler(
			baseHandler,
			container.AuthService,
			container.ProfileService,
			container.SiteService,
			handlers.CookieSettingsFromConfig(cfg),
		),
		SiteHandler:     handlers.NewSiteHandler(baseHandler, container.SiteService),
		SettingsHandler: handlers.NewSettingsHandler(baseHandler, container.SettingsService),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	logger.Info("CORS configured", "origins", strings.Join(cfg.Server.CORSOrigins, ","))
	return router
}
