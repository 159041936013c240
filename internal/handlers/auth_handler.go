package handlers

import (
	"net/http"
	"strings"
	"time"

	"portal_backend/internal/config"
	"portal_backend/internal/services"
	"portal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// CookieSettings - параметры cookie сессии
type CookieSettings struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
	TTL      time.Duration
}

func CookieSettingsFromConfig(cfg *config.Config) CookieSettings {
	sameSite := http.SameSiteLaxMode
	switch strings.ToLower(cfg.JWT.CookieSameSite) {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}
	return CookieSettings{
		Name:     cfg.JWT.CookieName,
		Secure:   cfg.JWT.CookieSecure,
		SameSite: sameSite,
		TTL:      cfg.SessionTTL(),
	}
}

type AuthHandler struct {
	*BaseHandler
	authService    services.AuthService
	profileService services.ProfileService
	siteService    services.SiteService
	cookie         CookieSettings
}

func NewAuthHandler(
	base *BaseHandler,
	authService services.AuthService,
	profileService services.ProfileService,
	siteService services.SiteService,
	cookie CookieSettings,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    base,
		authService:    authService,
		profileService: profileService,
		siteService:    siteService,
		cookie:         cookie,
	}
}

// RegisterRoutes регистрирует маршруты /auth.
// protected - middleware сессии, limited - ограничение попыток по IP для маршрута.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, protected gin.HandlerFunc, limited func(name string) gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/resend-verification", limited("resend-verification"), h.ResendVerification)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.GET("/check-setup", h.CheckSetup)
		auth.PUT("/setup-profile", h.SetupProfile)
		auth.POST("/check-member", h.CheckMember)
		auth.POST("/login", limited("login"), h.Login)
		auth.POST("/forgot-password", limited("forgot-password"), h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/session/logout", h.Logout)
	}

	session := auth.Group("")
	session.Use(protected)
	{
		session.PUT("/change-password", h.ChangePassword)
		session.GET("/me", h.Me)
		session.GET("/profile", h.GetProfile)
		session.PUT("/profile", h.UpdateProfile)
		session.GET("/profile/sites", h.ListProfileSites)
	}
}

// Signup godoc
// @Summary Регистрация
// @Description Создает аккаунт и профиль, отправляет письмо со ссылкой подтверждения
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Данные регистрации"
// @Success 201 {object} dto.MessageResponse
// @Failure 409 {object} apperrors.ErrorResponse "Email уже зарегистрирован"
// @Failure 422 {object} apperrors.ErrorResponse "Ошибки валидации"
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.Signup(c.Request.Context(), h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: services.MsgVerificationSent})
}

// ResendVerification godoc
// @Summary Повторная отправка письма подтверждения
// @Description Ответ одинаковый независимо от существования email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Email"
// @Success 200 {object} dto.MessageResponse
// @Failure 429 {object} apperrors.ErrorResponse
// @Router /api/auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.EmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), h.GetDB(c), req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: services.MsgResendGeneric})
}

// VerifyEmail godoc
// @Summary Подтверждение email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Токен из письма"
// @Success 200 {object} dto.VerifyEmailResponse
// @Failure 400 {object} apperrors.ErrorResponse "Токен неверный или просрочен"
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.VerifyEmail(c.Request.Context(), h.GetDB(c), req.Token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckSetup godoc
// @Summary Статус ссылки завершения профиля
// @Tags auth
// @Produce json
// @Param member query string true "Токен из письма"
// @Success 200 {object} dto.SetupStatusResponse
// @Failure 400 {object} dto.SetupStatusResponse "status=invalid"
// @Router /api/auth/check-setup [get]
func (h *AuthHandler) CheckSetup(c *gin.Context) {
	status, err := h.authService.CheckSetup(c.Request.Context(), h.GetDB(c), strings.TrimSpace(c.Query("member")))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	code := http.StatusOK
	if status == dto.SetupStatusInvalid {
		code = http.StatusBadRequest
	}
	c.JSON(code, dto.SetupStatusResponse{Status: status})
}

// SetupProfile godoc
// @Summary Завершение профиля
// @Description Сохраняет профиль, синхронизирует сайты и адрес доставки
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SetupProfileRequest true "Профиль"
// @Success 200 {object} dto.SetupProfileResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse "Email не подтвержден"
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /api/auth/setup-profile [put]
func (h *AuthHandler) SetupProfile(c *gin.Context) {
	var req dto.SetupProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.profileService.SetupProfile(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckMember godoc
// @Summary Можно ли еще завершить профиль
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.CheckMemberRequest true "Email и необязательный токен"
// @Success 200 {object} dto.CheckMemberResponse
// @Router /api/auth/check-member [post]
func (h *AuthHandler) CheckMember(c *gin.Context) {
	var req dto.CheckMemberRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.CheckMember(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Login godoc
// @Summary Вход
// @Description Ставит cookie сессии и возвращает тот же токен в теле
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Учетные данные"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 429 {object} apperrors.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token, int(h.cookie.TTL.Seconds()))
	c.JSON(http.StatusOK, resp)
}

// ForgotPassword godoc
// @Summary Запрос кода сброса пароля
// @Description Ответ одинаковый независимо от существования email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Email"
// @Success 200 {object} dto.MessageResponse
// @Failure 429 {object} apperrors.ErrorResponse
// @Router /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.EmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), h.GetDB(c), req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: services.MsgResetCodeGeneric})
}

// ResetPassword godoc
// @Summary Сброс пароля по коду
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Email, код и новый пароль"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} apperrors.ErrorResponse "Код неверный или просрочен"
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: services.MsgPasswordReset})
}

// ChangePassword godoc
// @Summary Смена пароля
// @Tags auth
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Текущий и новый пароль"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} apperrors.ErrorResponse "Неверный текущий пароль"
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /api/auth/change-password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), h.GetDB(c), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: services.MsgPasswordUpdated})
}

// Logout godoc
// @Summary Выход
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /api/auth/session/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

// Me godoc
// @Summary Текущий пользователь
// @Tags auth
// @Security CookieAuth
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	resp, err := h.authService.Me(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProfile godoc
// @Summary Профиль пользователя
// @Tags auth
// @Security CookieAuth
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	resp, err := h.profileService.GetProfile(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProfile godoc
// @Summary Выбор основного сайта
// @Description Делает сайт основным (создает при отсутствии), прикладывает данные дашборда
// @Tags auth
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Сайт"
// @Success 200 {object} dto.UpdateProfileResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.profileService.SetDefaultSite(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListProfileSites godoc
// @Summary Сайты пользователя
// @Tags auth
// @Security CookieAuth
// @Produce json
// @Success 200 {array} models.UserSite
// @Router /api/auth/profile/sites [get]
func (h *AuthHandler) ListProfileSites(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	sites, err := h.siteService.List(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sites)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(h.cookie.SameSite)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
