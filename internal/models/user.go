package models

import "time"

// AccountState - стадия жизненного цикла аккаунта
type AccountState string

const (
	AccountStateUnverified      AccountState = "unverified"
	AccountStateVerified        AccountState = "verified"
	AccountStateProfileComplete AccountState = "profile_complete"
)

type User struct {
	BaseModel
	Email                  string     `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash           string     `gorm:"size:255;not null"`
	IsVerified             bool       `gorm:"not null;default:false"`
	EmailVerifiedAt        *time.Time `gorm:"column:email_verified_at"`
	ProfileCompletedAt     *time.Time `gorm:"column:profile_completed_at"`
	PasswordResetCode      *string    `gorm:"size:6"`
	PasswordResetExpiresAt *time.Time

	// Relations
	Profile  *UserProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Sites    []UserSite    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Shipping *ShippingInfo `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// State выводит стадию из флагов: verified -> profile_complete только вперед
func (u *User) State() AccountState {
	switch {
	case !u.IsVerified:
		return AccountStateUnverified
	case u.ProfileCompletedAt != nil:
		return AccountStateProfileComplete
	default:
		return AccountStateVerified
	}
}

// SetupReferenceTime - точка отсчета окна завершения профиля:
// момент подтверждения email, иначе момент создания аккаунта.
func (u *User) SetupReferenceTime() time.Time {
	if u.EmailVerifiedAt != nil {
		return *u.EmailVerifiedAt
	}
	return u.CreatedAt
}
