package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the current user has one of
// roles. Admins pass every check.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetCurrentUserIsAdmin(c) {
			c.Next()
			return
		}
		userRole := GetCurrentUserRole(c)
		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, 40301, "insufficient permissions")
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole()
}
