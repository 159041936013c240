package handlers

import (
	"net/http"

	"portal_backend/internal/services"
	"portal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type SiteHandler struct {
	*BaseHandler
	siteService services.SiteService
}

func NewSiteHandler(base *BaseHandler, siteService services.SiteService) *SiteHandler {
	return &SiteHandler{
		BaseHandler: base,
		siteService: siteService,
	}
}

// RegisterRoutes - все маршруты /sites требуют сессию
func (h *SiteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sites := rg.Group("/sites")
	{
		sites.GET("", h.List)
		sites.POST("", h.Add)
		sites.PATCH("/:id/default", h.SetDefault)
		sites.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary Список сайтов
// @Tags sites
// @Security CookieAuth
// @Produce json
// @Success 200 {array} models.UserSite
// @Router /api/sites [get]
func (h *SiteHandler) List(c *gin.Context) {
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

// Add godoc
// @Summary Добавить сайт
// @Tags sites
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body dto.AddSiteRequest true "Сайт"
// @Success 201 {object} models.UserSite
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /api/sites [post]
func (h *SiteHandler) Add(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	var req dto.AddSiteRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	site, err := h.siteService.Add(c.Request.Context(), h.GetDB(c), userID, req.Site)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, site)
}

// SetDefault godoc
// @Summary Сделать сайт основным
// @Tags sites
// @Security CookieAuth
// @Produce json
// @Param id path int true "ID сайта"
// @Success 200 {object} models.UserSite
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/sites/{id}/default [patch]
func (h *SiteHandler) SetDefault(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	siteID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	site, err := h.siteService.SetDefault(c.Request.Context(), h.GetDB(c), userID, siteID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, site)
}

// Delete godoc
// @Summary Удалить сайт
// @Tags sites
// @Security CookieAuth
// @Param id path int true "ID сайта"
// @Success 204
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/sites/{id} [delete]
func (h *SiteHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAuthUserID(c)
	if !ok {
		return
	}

	siteID, err := ParseParamID(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if err := h.siteService.Delete(c.Request.Context(), h.GetDB(c), userID, siteID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
