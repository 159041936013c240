package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserProfile - 1:1 расширение аккаунта
type UserProfile struct {
	ID            uint                        `gorm:"primaryKey;autoIncrement"`
	UserID        uint                        `gorm:"uniqueIndex;not null"`
	FirstName     string                      `gorm:"size:100"`
	LastName      string                      `gorm:"size:100"`
	JobTitle      string                      `gorm:"size:150"`
	OtherAccounts datatypes.JSONSlice[string] `gorm:"not null"` // ["acct-1", "acct-2"], никогда не null
	CreatedAt     time.Time                   `gorm:"not null"`
	UpdatedAt     time.Time                   `gorm:"not null"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// BeforeSave гарантирует, что other_accounts хранится как [] а не null
func (p *UserProfile) BeforeSave(tx *gorm.DB) error {
	if p.OtherAccounts == nil {
		p.OtherAccounts = datatypes.JSONSlice[string]{}
	}
	return nil
}

// FullName - "Имя Фамилия" без лишних пробелов
func (p *UserProfile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Accounts возвращает other_accounts как обычный срез (пустой, если не заполнен)
func (p *UserProfile) Accounts() []string {
	if p == nil || p.OtherAccounts == nil {
		return []string{}
	}
	return []string(p.OtherAccounts)
}
