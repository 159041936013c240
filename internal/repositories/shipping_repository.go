package repositories

import (
	"errors"

	"portal_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrShippingNotFound = errors.New("shipping information not found")
)

type ShippingRepository interface {
	FindByUserID(db *gorm.DB, userID uint) (*models.ShippingInfo, error)
	// Upsert вставляет или перезаписывает единственную строку аккаунта
	Upsert(db *gorm.DB, info *models.ShippingInfo) error
}

type ShippingRepositoryImpl struct{}

func NewShippingRepository() ShippingRepository {
	return &ShippingRepositoryImpl{}
}

func (r *ShippingRepositoryImpl) FindByUserID(db *gorm.DB, userID uint) (*models.ShippingInfo, error) {
	var info models.ShippingInfo
	if err := db.First(&info, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShippingNotFound
		}
		return nil, err
	}
	return &info, nil
}

func (r *ShippingRepositoryImpl) Upsert(db *gorm.DB, info *models.ShippingInfo) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"address1", "address2", "city", "state", "zip", "country", "shipto",
			"source_site", "lookup_payload", "updated_at",
		}),
	}).Create(info).Error
}
