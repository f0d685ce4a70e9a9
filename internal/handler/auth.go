package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/middleware"
	"github.com/mrhexvel/ezgu/internal/service"
	"github.com/mrhexvel/ezgu/internal/tokenstore"
	"go.uber.org/zap"
)

// CookieConfig describes the session cookie carrying the JWT.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	authService *service.AuthService
	revoker     tokenstore.Revoker
	cookie      CookieConfig
}

func NewAuthHandler(authService *service.AuthService, revoker tokenstore.Revoker, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, revoker: revoker, cookie: cookie}
}

func (h *AuthHandler) setCookie(c *gin.Context, token string, expireAt time.Time) {
	maxAge := int(time.Until(expireAt).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,max=128"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	creds, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setCookie(c, creds.Token, creds.ExpireAt)
	c.JSON(http.StatusCreated, gin.H{
		"message": "registration successful",
		"user":    creds.User,
		"token":   creds.Token,
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	creds, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setCookie(c, creds.Token, creds.ExpireAt)
	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user":    creds.User,
		"token":   creds.Token,
	})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims := middleware.GetClaims(c); claims != nil && claims.ExpiresAt != nil {
		if err := h.revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			zap.L().Warn("revoke token", zap.Uint("user_id", claims.UserID), zap.Error(err))
		}
	}
	h.clearCookie(c)
	Message(c, "logged out")
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	Success(c, "user", middleware.GetCurrentUser(c))
}

// POST /auth/reset-password
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	Message(c, "if the email is registered, a reset link has been sent")
}

// POST /auth/reset-password/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, err)
		return
	}
	Message(c, "password updated")
}
