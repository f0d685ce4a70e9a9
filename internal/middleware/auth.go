package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/tokenstore"
	"github.com/mrhexvel/ezgu/pkg/jwt"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func abort(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

// tokenFromRequest reads the auth cookie first and falls back to a
// Bearer Authorization header for API clients.
func tokenFromRequest(c *gin.Context, cookieName string) (string, bool) {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v, true
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", true
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == authHeader {
		return "", false
	}
	return tokenStr, true
}

func AuthMiddleware(jwtSecret, cookieName string, db *gorm.DB, revoker tokenstore.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := tokenFromRequest(c, cookieName)
		if !ok {
			abort(c, http.StatusUnauthorized, 40102, "malformed authorization header")
			return
		}
		if tokenStr == "" {
			abort(c, http.StatusUnauthorized, 40102, "authentication required")
			return
		}

		claims, err := jwt.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrExpired) {
				abort(c, http.StatusUnauthorized, 40103, "token expired, please log in again")
			} else {
				abort(c, http.StatusUnauthorized, 40102, "invalid token")
			}
			return
		}

		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// Redis being down should not lock everyone out.
			zap.L().Warn("token revocation check failed", zap.Error(err))
		}
		if revoked {
			abort(c, http.StatusUnauthorized, 40102, "token revoked")
			return
		}

		var user model.User
		if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			abort(c, http.StatusUnauthorized, 40102, "user not found")
			return
		}

		c.Set("userID", user.ID)
		c.Set("userRole", user.Role)
		c.Set("user", &user)
		c.Set("claims", claims)
		c.Next()
	}
}

func GetCurrentUser(c *gin.Context) *model.User {
	u, exists := c.Get("user")
	if !exists {
		return nil
	}
	return u.(*model.User)
}

func GetCurrentUserID(c *gin.Context) uint {
	id, exists := c.Get("userID")
	if !exists {
		return 0
	}
	return id.(uint)
}

func GetCurrentUserRole(c *gin.Context) string {
	role, exists := c.Get("userRole")
	if !exists {
		return ""
	}
	return role.(string)
}

func GetCurrentUserIsAdmin(c *gin.Context) bool {
	return GetCurrentUserRole(c) == model.RoleAdmin
}

// GetClaims returns the parsed token of the current request.
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get("claims")
	if !exists {
		return nil
	}
	return v.(*jwt.Claims)
}
