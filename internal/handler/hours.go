package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/middleware"
	"github.com/mrhexvel/ezgu/internal/service"
)

type HoursHandler struct {
	hoursService *service.HoursService
	authService  *service.AuthService
}

func NewHoursHandler(hoursService *service.HoursService, authService *service.AuthService) *HoursHandler {
	return &HoursHandler{hoursService: hoursService, authService: authService}
}

// POST /projects/:id/hours
func (h *HoursHandler) Award(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	// Hours stays raw so a quoted number is rejected instead of coerced.
	var req struct {
		ParticipantID uint            `json:"participant_id" binding:"required"`
		Hours         json.RawMessage `json:"hours" binding:"required"`
		Note          string          `json:"note" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	var hours float64
	if err := json.Unmarshal(req.Hours, &hours); err != nil {
		BadRequest(c, service.ErrInvalidInput.Code, "hours must be a number")
		return
	}

	result, err := h.hoursService.Award(c.Request.Context(), id, middleware.GetCurrentUser(c), req.ParticipantID, hours, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "award_hours", "project", id, map[string]interface{}{
		"participant_id": req.ParticipantID,
		"user_id":        result.Participant.UserID,
		"hours":          hours,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message":     "hours awarded",
		"participant": result.Participant,
		"log":         result.Log,
	})
}

// GET /projects/:id/hours
func (h *HoursHandler) List(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	logs, err := h.hoursService.List(c.Request.Context(), id, parseID(c.Query("user_id")))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "logs", logs)
}
