package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl lets the requesting client keep a response for maxAgeSeconds.
// Shared caches are excluded because the routes it guards are authenticated.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", maxAgeSeconds))
		c.Next()
	}
}

// NoStore forbids caching attendance data anywhere.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
