package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/qrattend-backend/internal/response"
	"github.com/stemsi/qrattend-backend/internal/service"
)

// CheckSingleDeviceSession rejects tokens that are no longer the principal's
// latest login (signed in elsewhere, or logged out).
func CheckSingleDeviceSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		err := authService.ValidateSession(c.Request.Context(), claims)
		if errors.Is(err, service.ErrSessionInvalidated) {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}
		if err != nil {
			_ = c.Error(err)
			response.AbortFail(c, http.StatusServiceUnavailable, response.ErrInternal)
			return
		}

		c.Next()
	}
}
