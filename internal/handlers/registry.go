package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	HealthHandler   *HealthHandler
	AuthHandler     *AuthHandler
	SiteHandler     *SiteHandler
	SettingsHandler *SettingsHandler
}
