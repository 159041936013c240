package middleware

import (
	"strings"

	"portal_backend/internal/logger"
	"portal_backend/pkg/apperrors"
	"portal_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// SessionParser - то, что middleware нужно от auth.SessionManager
type SessionParser interface {
	ParseToken(tokenString string) (uint, error)
}

// AuthMiddleware - проверка сессионного JWT из cookie или заголовка Authorization
func AuthMiddleware(sessions SessionParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := sessionToken(c, cookieName)
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
			return
		}

		userID, err := sessions.ParseToken(tokenStr)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "session rejected", "error", err)
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Invalid or expired session"))
			return
		}

		c.Set(contextkeys.UserIDKey, userID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// Cookie имеет приоритет: браузерный фронтенд шлет именно ее
func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(contextkeys.UserIDKey)
	if !exists {
		return 0, false
	}

	id, ok := userID.(uint)
	return id, ok && id != 0
}
