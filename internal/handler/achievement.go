package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/middleware"
	"github.com/mrhexvel/ezgu/internal/service"
)

type AchievementHandler struct {
	achievementService *service.AchievementService
	authService        *service.AuthService
}

func NewAchievementHandler(achievementService *service.AchievementService, authService *service.AuthService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService, authService: authService}
}

type achievementRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=128"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" binding:"omitempty,max=64"`
	Color       *string `json:"color" binding:"omitempty,max=32"`
	Points      *int    `json:"points"`
}

func (r achievementRequest) input() service.AchievementInput {
	return service.AchievementInput{
		Title:       r.Title,
		Description: r.Description,
		Icon:        r.Icon,
		Color:       r.Color,
		Points:      r.Points,
	}
}

// GET /achievements
func (h *AchievementHandler) List(c *gin.Context) {
	list, err := h.achievementService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "achievements", list)
}

// GET /achievements/:id
func (h *AchievementHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.achievementService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "achievement", a)
}

// POST /achievements
func (h *AchievementHandler) Create(c *gin.Context) {
	var req achievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.achievementService.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "create", "achievement", a.ID, map[string]interface{}{"title": a.Title, "points": a.Points})
	Created(c, "achievement created", "achievement", a)
}

// PUT /achievements/:id
func (h *AchievementHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req achievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.achievementService.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "update", "achievement", id, nil)
	Updated(c, "achievement updated", "achievement", a)
}

// DELETE /achievements/:id
func (h *AchievementHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.achievementService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "delete", "achievement", id, nil)
	Message(c, "achievement deleted")
}

// POST /achievements/:id/award
func (h *AchievementHandler) Award(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	grant, err := h.achievementService.Award(c.Request.Context(), id, req.UserID, middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "award", "achievement", id, map[string]interface{}{"user_id": req.UserID})
	Created(c, "achievement awarded", "award", grant)
}

// DELETE /achievements/:id/award?user_id=
func (h *AchievementHandler) Revoke(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID := parseID(c.Query("user_id"))
	if userID == 0 {
		BadRequest(c, service.ErrInvalidInput.Code, "user_id is required")
		return
	}
	if err := h.achievementService.Revoke(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "revoke", "achievement", id, map[string]interface{}{"user_id": userID})
	Message(c, "achievement revoked")
}
