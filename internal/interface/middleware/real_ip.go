package middleware

import (
	"github.com/gin-gonic/gin"
)

// RealIP stores the client address under "real_ip". Forwarding headers are
// honoured only when the engine trusts the peer (SetTrustedProxies,
// TrustedPlatform); otherwise the socket address is used.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}
