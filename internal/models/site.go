package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserSite - именованный сайт аккаунта.
// На аккаунт не больше одной строки с is_default = true.
// SiteSlug хранится в верхнем регистре, так что idx_user_site_slug
// не пропускает "CTZ" и "ctz" одновременно.
type UserSite struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_site_slug" json:"user_id"`
	SiteSlug  string    `gorm:"size:100;not null;uniqueIndex:idx_user_site_slug" json:"site_slug"`
	Label     string    `gorm:"size:255;not null" json:"label"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserSite) TableName() string {
	return "user_sites"
}

func (s *UserSite) BeforeSave(tx *gorm.DB) error {
	s.SiteSlug = strings.ToUpper(strings.TrimSpace(s.SiteSlug))
	return nil
}
