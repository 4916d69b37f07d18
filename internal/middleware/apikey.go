package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orgcatalog/backend/pkg/response"
)

// APIKeyHeader is the header carrying the client API key.
const APIKeyHeader = "X-API-Key"

// APIKey returns a middleware that rejects requests without the
// configured API key. Comparison is constant-time.
func APIKey(key string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader(APIKeyHeader)
		if supplied == "" {
			logger.Warn("missing API key", zap.String("client_ip", c.ClientIP()))
			response.Forbidden(c, "API key is missing")
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
			logger.Warn("invalid API key", zap.String("client_ip", c.ClientIP()))
			response.Forbidden(c, "Invalid API key")
			c.Abort()
			return
		}
		c.Next()
	}
}
