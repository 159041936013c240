package testutil

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"portal_backend/database"
	"portal_backend/internal/auth"
	"portal_backend/internal/config"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	TestPassword = "super_password123"
	TestDomain   = "@dtgpower.com"
)

var loggerOnce sync.Once

// QuietLogger переключает глобальный логгер в тестовый режим (только warn+, в никуда)
func QuietLogger() {
	loggerOnce.Do(func() {
		logger.InitWithWriter("test", io.Discard)
	})
}

// NewTestDB - отдельная in-memory SQLite база на тест с примененными миграциями.
// Одно соединение: транзакции сервисов идут строго по очереди.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	QuietLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "не удалось открыть тестовую БД")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewTestConfig - конфигурация со значениями по умолчанию для тестов
func NewTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            5000,
			Env:             "test",
			FrontendBaseURL: "http://localhost:3000",
			CORSOrigins:     []string{"http://localhost:3000"},
		},
		Database: config.DatabaseConfig{Driver: "postgres", DSN: "sqlite-in-memory"},
		JWT: config.JWTConfig{
			Secret:         "test-session-secret-0123456789abcdef",
			TTLHours:       168,
			CookieName:     "access_token_cookie",
			CookieSameSite: "Lax",
		},
		Security: config.SecurityConfig{
			TokenSecret:         "test-token-secret-0123456789abcdef",
			VerifyTokenMaxAge:   24 * time.Hour,
			SetupWindowDays:     30,
			ResetCodeTTL:        30 * time.Minute,
			AllowedEmailDomains: []string{"@dtgpower.com", "@amazon.com"},
		},
		AddressLookup: config.AddressLookupConfig{
			Timeout:          time.Second,
			DashboardTimeout: time.Second,
			Concurrency:      2,
		},
		RateLimit: config.RateLimitConfig{Attempts: 5, Window: time.Minute},
	}
}

// UniqueEmail - адрес в разрешенном домене, не повторяющийся между тестами
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%s%s", prefix, strings.ReplaceAll(uuid.NewString()[:8], "-", ""), TestDomain)
}

// CreateUser создает аккаунт с профилем. Пароль всегда TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, email string, verified bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	require.NoError(t, err)

	user := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		IsVerified:   verified,
	}
	if verified {
		now := time.Now().UTC()
		user.EmailVerifiedAt = &now
	}
	require.NoError(t, db.Create(user).Error, "не удалось создать пользователя %s", email)

	profile := &models.UserProfile{
		UserID:        user.ID,
		FirstName:     "Test",
		LastName:      "User",
		OtherAccounts: datatypes.JSONSlice[string]{},
	}
	require.NoError(t, db.Create(profile).Error)

	return user
}

// AgeVerification сдвигает отметку подтверждения email в прошлое
func AgeVerification(t *testing.T, db *gorm.DB, userID uint, age time.Duration) {
	t.Helper()
	at := time.Now().UTC().Add(-age)
	err := db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"email_verified_at": at, "created_at": at}).Error
	require.NoError(t, err)
}
