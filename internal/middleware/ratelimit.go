package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/orgcatalog/backend/pkg/response"
)

// RateLimit returns a per-client fixed-window limiter backed by Redis.
// Windows are one minute wide, keyed by client IP. When Redis is
// unreachable the request is allowed through; the limiter protects the
// store, it is not an availability dependency.
func RateLimit(rdb *redis.Client, perMinute int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		window := time.Now().Unix() / 60
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), window)

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			// Without the TTL the window key never leaves Redis.
			if err := rdb.Expire(c.Request.Context(), key, time.Minute).Err(); err != nil {
				logger.Warn("rate limit window TTL not set", zap.String("key", key), zap.Error(err))
			}
		}
		if count > int64(perMinute) {
			response.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
