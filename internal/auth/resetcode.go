package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

const ResetCodeLength = 6

var resetCodeSpace = big.NewInt(1_000_000)

// GenerateResetCode - случайный 6-значный числовой код (с ведущими нулями)
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, resetCodeSpace)
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// IsResetCodeFormat - ровно 6 цифр
func IsResetCodeFormat(code string) bool {
	if len(code) != ResetCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResetCodeMatches сравнивает коды за постоянное время
func ResetCodeMatches(stored *string, given string) bool {
	if stored == nil || *stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(given)) == 1
}

// ResetCodeExpired - срок истек или не задан
func ResetCodeExpired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt == nil || !now.Before(*expiresAt)
}
