package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth requires "Authorization: Bearer <secret>". An empty secret lets every request
// through. Rejected requests are answered by reject, which must abort.
func BearerAuth(secret string, reject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			if log := logFrom(c); log != nil {
				log.Warnw("bearer_auth_rejected", "path", c.FullPath())
			}
			reject(c)
			return
		}
		c.Next()
	}
}

