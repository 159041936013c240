package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCodec(secret string, clock *fakeClock) *TokenCodec {
	codec := NewTokenCodec(secret)
	codec.now = clock.Now
	return codec
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec("token-secret", clock)

	token, err := codec.Issue(42, PurposeVerify)
	require.NoError(t, err)

	clock.t = clock.t.Add(23 * time.Hour)
	id, err := codec.Verify(token, PurposeVerify, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestTokenCodec_Failures(t *testing.T) {
	issued := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issued}
	codec := newTestCodec("token-secret", clock)

	token, err := codec.Issue(7, PurposeVerify)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		clock.t = issued.Add(25 * time.Hour)
		defer func() { clock.t = issued }()

		_, err := codec.Verify(token, PurposeVerify, 24*time.Hour)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong purpose", func(t *testing.T) {
		_, err := codec.Verify(token, "reset", 24*time.Hour)
		assert.ErrorIs(t, err, ErrTokenWrongPurpose)
	})

	t.Run("other secret", func(t *testing.T) {
		other := newTestCodec("another-secret", clock)
		_, err := other.Verify(token, PurposeVerify, 24*time.Hour)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("tampered", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]
		_, err := codec.Verify(tampered, PurposeVerify, 24*time.Hour)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := codec.Verify("not-a-token", PurposeVerify, 24*time.Hour)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestTokens_AreNotInterchangeable(t *testing.T) {
	sessions := NewSessionManager("shared-secret", time.Hour)
	codec := NewTokenCodec("shared-secret")

	sessionToken, _, err := sessions.GenerateToken(3)
	require.NoError(t, err)
	_, err = codec.Verify(sessionToken, PurposeVerify, time.Hour)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	verifyToken, err := codec.Issue(3, PurposeVerify)
	require.NoError(t, err)
	_, err = sessions.ParseToken(verifyToken)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionManager(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	sessions := NewSessionManager("session-secret", 7*24*time.Hour)
	sessions.now = clock.Now

	token, expiresAt, err := sessions.GenerateToken(11)
	require.NoError(t, err)
	assert.WithinDuration(t, clock.t.Add(7*24*time.Hour), expiresAt, time.Second)

	id, err := sessions.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(11), id)

	clock.t = clock.t.Add(8 * 24 * time.Hour)
	_, err = sessions.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestResetCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateResetCode()
		require.NoError(t, err)
		assert.True(t, IsResetCodeFormat(code), code)
	}

	assert.False(t, IsResetCodeFormat("12345"))
	assert.False(t, IsResetCodeFormat("12a456"))
	assert.False(t, IsResetCodeFormat("1234567"))

	stored := "012345"
	assert.True(t, ResetCodeMatches(&stored, "012345"))
	assert.False(t, ResetCodeMatches(&stored, "012346"))
	assert.False(t, ResetCodeMatches(nil, "012345"))

	now := time.Now()
	past := now.Add(-31 * time.Minute)
	future := now.Add(29 * time.Minute)
	assert.True(t, ResetCodeExpired(&past, now))
	assert.False(t, ResetCodeExpired(&future, now))
	assert.True(t, ResetCodeExpired(nil, now))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))

	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.NoError(t, ValidatePassword("long-enough"))

	tooLong := strings.Repeat("ж", 40)
	assert.ErrorIs(t, ValidatePassword(tooLong), ErrPasswordTooLong)
	_, err = HashPassword(tooLong)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
