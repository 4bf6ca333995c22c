package utils

import (
	"github.com/gin-gonic/gin"
)

// GetRealIP returns the client address for audit rows and rate-limit keys.
// X-Forwarded-For and X-Real-IP are read only when the direct peer is one of
// the router's trusted proxies; otherwise the socket peer is the client.
func GetRealIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return c.RemoteIP()
}

// GetUserAgent extracts the User-Agent header from the request
func GetUserAgent(c *gin.Context) string {
	if ua := c.Request.UserAgent(); ua != "" {
		return ua
	}
	return "Unknown"
}
