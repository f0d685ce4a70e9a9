package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response helpers

func Success(c *gin.Context, key string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{key: data})
}

func Created(c *gin.Context, message, key string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"message": message, key: data})
}

func Updated(c *gin.Context, message, key string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"message": message, key: data})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func SuccessPaged(c *gin.Context, items interface{}, total int64, page service.Page) {
	totalPages := 0
	if page.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(page.Limit)))
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"pagination": gin.H{
			"total":       total,
			"page":        page.Page,
			"limit":       page.Limit,
			"total_pages": totalPages,
		},
	})
}

func Error(c *gin.Context, httpCode int, code int, message string) {
	c.AbortWithStatusJSON(httpCode, gin.H{
		"error": message,
		"code":  code,
	})
}

func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// InternalError logs err and answers with a generic message.
func InternalError(c *gin.Context, err error) {
	zap.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	Error(c, http.StatusInternalServerError, 50001, "internal server error")
}

// respondError converts any service error into the JSON error shape.
func respondError(c *gin.Context, err error) {
	var se *service.Error
	switch {
	case errors.As(err, &se):
		Error(c, se.Status(), se.Code, se.Message)
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, 40400, "not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		Error(c, http.StatusConflict, 40900, "duplicate entry")
	default:
		InternalError(c, err)
	}
}

func bindError(c *gin.Context, err error) {
	BadRequest(c, service.ErrInvalidInput.Code, "invalid request: "+err.Error())
}

func parseID(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 64)
	return uint(id)
}

// pathID reads a numeric path parameter and answers 400 when it is not one.
func pathID(c *gin.Context, name string) (uint, bool) {
	id := parseID(c.Param(name))
	if id == 0 {
		BadRequest(c, service.ErrInvalidInput.Code, "invalid "+name)
		return 0, false
	}
	return id, true
}

func parsePage(c *gin.Context) service.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return service.Page{Page: page, Limit: limit}
}

func parseBoolQuery(c *gin.Context, key string) *bool {
	s := c.Query(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}
