package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/logger"
)

// RateLimitMiddleware enforces a fixed-window per-user limit backed by
// Redis, so the count survives restarts and is shared across replicas. The
// limiter fails open: when Redis is unavailable the request is served and
// the error logged.
func RateLimitMiddleware(rdb *redis.Client, action string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s:%d", action, userID, time.Now().Unix()/int64(window.Seconds()))

		ctx := c.Request.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.CtxWarn(ctx, "rate limiter unavailable, allowing request", "action", action, "error", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				logger.CtxWarn(ctx, "failed to set rate limit expiry", "key", key, "error", err)
			}
		}

		if count > int64(limit) {
			apperrors.HandleError(c, apperrors.ErrRateLimited.WithDetails(map[string]interface{}{
				"action":             action,
				"limit":              limit,
				"window_seconds":     int(window.Seconds()),
				"retry_after_second": int(window.Seconds()),
			}))
			c.Abort()
			return
		}

		c.Next()
	}
}
