package repositories

import (
	"errors"
	"time"

	"portal_backend/internal/algorithms"
	"portal_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSiteNotFound = errors.New("site not found")
)

type SiteRepository interface {
	ListByUser(db *gorm.DB, userID uint) ([]models.UserSite, error)
	FindForUser(db *gorm.DB, userID, siteID uint) (*models.UserSite, error)
	Create(db *gorm.DB, site *models.UserSite) error
	Delete(db *gorm.DB, userID, siteID uint) error

	// ClearDefaults снимает флаг default со всех сайтов аккаунта
	ClearDefaults(db *gorm.DB, userID uint) error
	MarkDefault(db *gorm.DB, userID, siteID uint) error

	// ApplyPlan применяет план синхронизации; db должен быть транзакцией
	ApplyPlan(db *gorm.DB, userID uint, plan algorithms.SitePlan) error
}

type SiteRepositoryImpl struct{}

func NewSiteRepository() SiteRepository {
	return &SiteRepositoryImpl{}
}

func (r *SiteRepositoryImpl) ListByUser(db *gorm.DB, userID uint) ([]models.UserSite, error) {
	var sites []models.UserSite
	err := db.Where("user_id = ?", userID).Order("id ASC").Find(&sites).Error
	return sites, err
}

func (r *SiteRepositoryImpl) FindForUser(db *gorm.DB, userID, siteID uint) (*models.UserSite, error) {
	var site models.UserSite
	if err := db.First(&site, "id = ? AND user_id = ?", siteID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return &site, nil
}

func (r *SiteRepositoryImpl) Create(db *gorm.DB, site *models.UserSite) error {
	if site.CreatedAt.IsZero() {
		site.CreatedAt = time.Now().UTC()
	}
	return db.Create(site).Error
}

func (r *SiteRepositoryImpl) Delete(db *gorm.DB, userID, siteID uint) error {
	result := db.Where("id = ? AND user_id = ?", siteID, userID).Delete(&models.UserSite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSiteNotFound
	}
	return nil
}

func (r *SiteRepositoryImpl) ClearDefaults(db *gorm.DB, userID uint) error {
	return db.Model(&models.UserSite{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

func (r *SiteRepositoryImpl) MarkDefault(db *gorm.DB, userID, siteID uint) error {
	result := db.Model(&models.UserSite{}).
		Where("id = ? AND user_id = ?", siteID, userID).
		Update("is_default", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSiteNotFound
	}
	return nil
}

func (r *SiteRepositoryImpl) ApplyPlan(db *gorm.DB, userID uint, plan algorithms.SitePlan) error {
	if len(plan.Delete) > 0 {
		if err := db.Where("user_id = ? AND id IN ?", userID, plan.Delete).Delete(&models.UserSite{}).Error; err != nil {
			return err
		}
	}

	// Сначала сбрасываем все default, иначе на postgres сработает частичный уникальный индекс
	if err := r.ClearDefaults(db, userID); err != nil {
		return err
	}

	for _, upd := range plan.Update {
		err := db.Model(&models.UserSite{}).
			Where("id = ? AND user_id = ?", upd.ID, userID).
			Updates(map[string]interface{}{
				"site_slug":  upd.Slug,
				"label":      upd.Label,
				"is_default": upd.IsDefault,
			}).Error
		if err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	for _, ins := range plan.Insert {
		site := &models.UserSite{
			UserID:    userID,
			SiteSlug:  ins.Slug,
			Label:     ins.Label,
			IsDefault: ins.IsDefault,
			CreatedAt: now,
		}
		if err := db.Create(site).Error; err != nil {
			return err
		}
	}

	return nil
}
