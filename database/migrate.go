package database

import (
	"fmt"

	"portal_backend/internal/config"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open открывает соединение GORM для настроенного драйвера (postgres | mysql)
func Open(cfg config.DatabaseConfig, env string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}
	if env == "development" {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}
	return db, nil
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.UserSite{},
		&models.ShippingInfo{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Postgres умеет частичные уникальные индексы: один default на аккаунт
	// гарантирует сама БД. Для остальных драйверов инвариант держит сервис.
	if db.Dialector.Name() == "postgres" {
		stmt := `CREATE UNIQUE INDEX IF NOT EXISTS idx_user_sites_one_default
			ON user_sites (user_id) WHERE is_default`
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create default-site index: %w", err)
		}
	}

	logger.Info("AutoMigrate completed", "dialect", db.Dialector.Name())
	return nil
}
