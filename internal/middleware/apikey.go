package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	APIKeyHeader = "X-API-Key"
	apiKeyCtxKey = "api_key"
)

// APIKey rejects requests without one of keys, read from X-API-Key or an
// "Authorization: Bearer" header. An empty key list disables the check.
func APIKey(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		presented := c.GetHeader(APIKeyHeader)
		if presented == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				presented = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if presented == "" {
			Unauthorized(c, "API key required")
			return
		}

		for _, k := range keys {
			if subtle.ConstantTimeCompare([]byte(presented), []byte(k)) == 1 {
				c.Set(apiKeyCtxKey, k)
				c.Next()
				return
			}
		}
		Unauthorized(c, "Invalid API key")
	}
}
