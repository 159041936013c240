package repositories

import (
	"errors"

	"portal_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

type ProfileRepository interface {
	Create(db *gorm.DB, profile *models.UserProfile) error
	FindByUserID(db *gorm.DB, userID uint) (*models.UserProfile, error)
	// FindOrCreate возвращает профиль аккаунта, создавая пустой при отсутствии
	FindOrCreate(db *gorm.DB, userID uint) (*models.UserProfile, error)
	Save(db *gorm.DB, profile *models.UserProfile) error
}

type ProfileRepositoryImpl struct{}

func NewProfileRepository() ProfileRepository {
	return &ProfileRepositoryImpl{}
}

func (r *ProfileRepositoryImpl) Create(db *gorm.DB, profile *models.UserProfile) error {
	return db.Create(profile).Error
}

func (r *ProfileRepositoryImpl) FindByUserID(db *gorm.DB, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) FindOrCreate(db *gorm.DB, userID uint) (*models.UserProfile, error) {
	profile, err := r.FindByUserID(db, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	profile = &models.UserProfile{UserID: userID, OtherAccounts: datatypes.JSONSlice[string]{}}
	if err := r.Create(db, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *ProfileRepositoryImpl) Save(db *gorm.DB, profile *models.UserProfile) error {
	return db.Save(profile).Error
}
