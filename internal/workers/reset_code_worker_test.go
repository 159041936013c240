package workers

import (
	"context"
	"testing"
	"time"

	"portal_backend/internal/models"
	"portal_backend/internal/repositories"
	"portal_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetCodeWorker_Sweep(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewUserRepository()

	expired := testutil.CreateUser(t, db, testutil.UniqueEmail("expired"), true)
	active := testutil.CreateUser(t, db, testutil.UniqueEmail("active"), true)
	untouched := testutil.CreateUser(t, db, testutil.UniqueEmail("none"), true)

	now := time.Now().UTC()
	require.NoError(t, repo.SetResetCode(db, expired.ID, "123456", now.Add(-time.Minute)))
	require.NoError(t, repo.SetResetCode(db, active.ID, "654321", now.Add(time.Hour)))

	w := NewResetCodeWorker(db, repo, time.Minute)
	w.now = func() time.Time { return now }

	cleared, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	var gotExpired, gotActive, gotUntouched models.User
	require.NoError(t, db.First(&gotExpired, expired.ID).Error)
	assert.Nil(t, gotExpired.PasswordResetCode)
	assert.Nil(t, gotExpired.PasswordResetExpiresAt)

	require.NoError(t, db.First(&gotActive, active.ID).Error)
	require.NotNil(t, gotActive.PasswordResetCode)
	assert.Equal(t, "654321", *gotActive.PasswordResetCode)

	require.NoError(t, db.First(&gotUntouched, untouched.ID).Error)
	assert.Nil(t, gotUntouched.PasswordResetCode)

	cleared, err = w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, cleared, "повторный проход ничего не меняет")
}
