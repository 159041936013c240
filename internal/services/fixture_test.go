package services

import (
	"testing"
	"time"

	"portal_backend/internal/auth"
	"portal_backend/internal/testutil"

	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	mail     *testutil.MailRecorder
	lookup   *testutil.StubLookup
	tokens   *auth.TokenCodec
	auth     *AuthServiceImpl
	profiles *ProfileServiceImpl
	sites    SiteService
	settings SettingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testutil.NewTestConfig()
	mail := testutil.NewMailRecorder()
	lookup := testutil.NewStubLookup()

	container := NewServiceContainer(cfg, Dependencies{
		EmailProvider: mail,
		AddressLookup: lookup,
	})

	return &fixture{
		db:       testutil.NewTestDB(t),
		mail:     mail,
		lookup:   lookup,
		tokens:   auth.NewTokenCodec(cfg.Security.TokenSecret),
		auth:     container.AuthService.(*AuthServiceImpl),
		profiles: container.ProfileService.(*ProfileServiceImpl),
		sites:    container.SiteService,
		settings: container.SettingsService,
	}
}

// shiftClock сдвигает "сейчас" сервисов на d вперед
func (f *fixture) shiftClock(d time.Duration) {
	now := func() time.Time { return time.Now().Add(d) }
	f.auth.now = now
	f.profiles.now = now
}

func (f *fixture) verifyToken(t *testing.T, userID uint) string {
	t.Helper()
	token, err := f.tokens.Issue(userID, auth.PurposeVerify)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
