package handlers

import (
	"net/http"

	"portal_backend/internal/services"
	"portal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	*BaseHandler
	settingsService services.SettingsService
}

func NewSettingsHandler(base *BaseHandler, settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		BaseHandler:     base,
		settingsService: settingsService,
	}
}

func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("", h.Update)
		settings.GET("/shipping", h.GetShipping)
		settings.PUT("/shipping", h.UpdateShipping)
	}
}

// Get godoc
// @Summary Настройки аккаунта
// @Tags settings
// @Security CookieAuth
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Router /api/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	resp, err := h.settingsService.Get(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Обновить настройки
// @Description Меняются только переданные поля
// @Tags settings
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingsRequest true "Поля профиля"
// @Success 200 {object} dto.SettingsResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /api/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSettingsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.settingsService.Update(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetShipping godoc
// @Summary Адрес доставки
// @Tags settings
// @Security CookieAuth
// @Produce json
// @Success 200 {object} models.ShippingInfo
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/settings/shipping [get]
func (h *SettingsHandler) GetShipping(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	info, err := h.settingsService.GetShipping(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// UpdateShipping godoc
// @Summary Сохранить адрес доставки
// @Tags settings
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body dto.ShippingRequest true "Адрес"
// @Success 200 {object} models.ShippingInfo
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /api/settings/shipping [put]
func (h *SettingsHandler) UpdateShipping(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	var req dto.ShippingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	info, err := h.settingsService.UpdateShipping(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
