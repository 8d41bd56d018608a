package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/taskmaster-api/pkg/response"
)

// AllowFunc reports whether a request may bypass a check.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP allows loopback and private (10/8, 172.16/12, 192.168/16) clients.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// RequireAllowed rejects requests that allow does not accept with 403.
func RequireAllowed(allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c) {
			response.Error(c, http.StatusForbidden, "Access denied", nil)
			return
		}
		c.Next()
	}
}
