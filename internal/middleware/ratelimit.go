package middleware

import (
	"fmt"
	"strconv"
	"time"

	"portal_backend/internal/logger"
	"portal_backend/internal/ratelimit"
	"portal_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware ограничивает число попыток с одного IP для маршрута.
// prefix разделяет счетчики разных эндпоинтов.
func RateLimitMiddleware(limiter ratelimit.Limiter, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ip:%s:%s", prefix, c.ClientIP())
		res := limiter.Allow(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			secondsLeft := int(time.Until(res.ResetAt).Seconds()) + 1
			if secondsLeft < 1 {
				secondsLeft = 1
			}
			c.Header("Retry-After", strconv.Itoa(secondsLeft))
			logger.CtxWarn(c.Request.Context(), "rate limit exceeded", "endpoint", prefix, "client_ip", c.ClientIP())
			apperrors.HandleError(c, apperrors.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
