package repositories

import (
	"errors"
	"strings"
	"time"

	"portal_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id uint) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(db *gorm.DB, email string) (bool, error)

	MarkVerified(db *gorm.DB, userID uint, at time.Time) error
	MarkProfileCompleted(db *gorm.DB, userID uint, at time.Time) error
	UpdatePassword(db *gorm.DB, userID uint, passwordHash string) error

	SetResetCode(db *gorm.DB, userID uint, code string, expiresAt time.Time) error
	ClearResetCode(db *gorm.DB, userID uint) error
	ClearExpiredResetCodes(db *gorm.DB, now time.Time) (int64, error)
}

type UserRepositoryImpl struct {
	// db передается в каждый метод (пул или транзакция)
}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

// NormalizeEmail - email хранится в нижнем регистре без пробелов
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)

	exists, err := r.ExistsByEmail(db, user.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserAlreadyExists
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ?", NormalizeEmail(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByEmail(db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("email = ?", NormalizeEmail(email)).Count(&count).Error
	return count > 0, err
}

// MarkVerified идемпотентен: время подтверждения ставится только один раз
func (r *UserRepositoryImpl) MarkVerified(db *gorm.DB, userID uint, at time.Time) error {
	result := db.Model(&models.User{}).
		Where("id = ? AND is_verified = ?", userID, false).
		Updates(map[string]interface{}{
			"is_verified":       true,
			"email_verified_at": at,
		})
	return result.Error
}

func (r *UserRepositoryImpl) MarkProfileCompleted(db *gorm.DB, userID uint, at time.Time) error {
	return r.update(db, userID, map[string]interface{}{"profile_completed_at": at})
}

// UpdatePassword меняет хеш и гасит неиспользованный код сброса
func (r *UserRepositoryImpl) UpdatePassword(db *gorm.DB, userID uint, passwordHash string) error {
	return r.update(db, userID, map[string]interface{}{
		"password_hash":             passwordHash,
		"password_reset_code":       nil,
		"password_reset_expires_at": nil,
	})
}

func (r *UserRepositoryImpl) SetResetCode(db *gorm.DB, userID uint, code string, expiresAt time.Time) error {
	return r.update(db, userID, map[string]interface{}{
		"password_reset_code":       code,
		"password_reset_expires_at": expiresAt,
	})
}

func (r *UserRepositoryImpl) ClearResetCode(db *gorm.DB, userID uint) error {
	return r.update(db, userID, map[string]interface{}{
		"password_reset_code":       nil,
		"password_reset_expires_at": nil,
	})
}

// ClearExpiredResetCodes гасит все коды сброса, срок которых истек к now
func (r *UserRepositoryImpl) ClearExpiredResetCodes(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.User{}).
		Where("password_reset_expires_at IS NOT NULL AND password_reset_expires_at < ?", now).
		Updates(map[string]interface{}{
			"password_reset_code":       nil,
			"password_reset_expires_at": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *UserRepositoryImpl) update(db *gorm.DB, userID uint, values map[string]interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
