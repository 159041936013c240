package services

import (
	"portal_backend/internal/addresslookup"
	"portal_backend/internal/auth"
	"portal_backend/internal/config"
	"portal_backend/internal/email"
	"portal_backend/internal/repositories"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService     AuthService
	ProfileService  ProfileService
	SiteService     SiteService
	SettingsService SettingsService
	EmailService    email.Provider
	Sessions        *auth.SessionManager
}

// Dependencies - внешние зависимости, которые собираются в app
type Dependencies struct {
	EmailProvider email.Provider
	AddressLookup addresslookup.Lookup
}

// NewServiceContainer собирает сервисы поверх stateless репозиториев
func NewServiceContainer(cfg *config.Config, deps Dependencies) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	profileRepo := repositories.NewProfileRepository()
	siteRepo := repositories.NewSiteRepository()
	shippingRepo := repositories.NewShippingRepository()

	tokens := auth.NewTokenCodec(cfg.Security.TokenSecret)
	sessions := auth.NewSessionManager(cfg.JWT.Secret, cfg.SessionTTL())
	settings := AuthSettingsFromConfig(cfg)

	siteService := NewSiteService(siteRepo)
	syncer := NewShippingSyncer(deps.AddressLookup, shippingRepo, cfg.AddressLookup.Concurrency)

	return &ServiceContainer{
		AuthService:     NewAuthService(userRepo, profileRepo, tokens, sessions, deps.EmailProvider, settings),
		ProfileService:  NewProfileService(userRepo, profileRepo, siteService, syncer, deps.AddressLookup, tokens, settings),
		SiteService:     siteService,
		SettingsService: NewSettingsService(userRepo, profileRepo, shippingRepo, siteService),
		EmailService:    deps.EmailProvider,
		Sessions:        sessions,
	}
}
