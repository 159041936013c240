package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeVerify - токен подтверждения email (он же токен доступа к setup-profile)
const PurposeVerify = "verify"

const verifyNamespace = "email-verify"

var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("token invalid")
	ErrTokenWrongPurpose = errors.New("token issued for another purpose")
)

type purposeClaims struct {
	jwt.RegisteredClaims
	UserID  uint   `json:"uid"`
	Purpose string `json:"purpose"`
}

// TokenCodec - подписанные токены с назначением и временем выпуска.
// Аудитория отличается от сессионной, так что токены не взаимозаменяемы.
type TokenCodec struct {
	secret    []byte
	namespace string
	now       func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), namespace: verifyNamespace, now: time.Now}
}

// Issue выпускает токен для аккаунта с назначением purpose
func (c *TokenCodec) Issue(userID uint, purpose string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, purposeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: jwt.ClaimStrings{c.namespace},
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
		UserID:  userID,
		Purpose: purpose,
	})
	return token.SignedString(c.secret)
}

// Verify проверяет подпись, назначение и возраст токена.
// Любая ошибка разбора дает ErrTokenInvalid.
func (c *TokenCodec) Verify(tokenString, purpose string, maxAge time.Duration) (uint, error) {
	claims := &purposeClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(c.namespace),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return 0, ErrTokenInvalid
	}
	if claims.IssuedAt == nil || claims.UserID == 0 {
		return 0, ErrTokenInvalid
	}
	if claims.Purpose != purpose {
		return 0, ErrTokenWrongPurpose
	}
	if c.now().Sub(claims.IssuedAt.Time) > maxAge {
		return 0, ErrTokenExpired
	}

	return claims.UserID, nil
}
