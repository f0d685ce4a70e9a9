package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// GET /healthz
func (h *HealthHandler) Check(c *gin.Context) {
	if err := database.Ping(h.db); err != nil {
		zap.L().Error("health check", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
