package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/middleware"
	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/service"
	"github.com/mrhexvel/ezgu/internal/stats"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService  *service.UserService
	hoursService *service.HoursService
	authService  *service.AuthService
}

func NewUserHandler(userService *service.UserService, hoursService *service.HoursService, authService *service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, hoursService: hoursService, authService: authService}
}

type userRequest struct {
	Name      *string   `json:"name" binding:"omitempty,max=128"`
	Email     *string   `json:"email"`
	Password  *string   `json:"password"`
	Role      *string   `json:"role"`
	Avatar    *string   `json:"avatar" binding:"omitempty,max=512"`
	Bio       *string   `json:"bio"`
	Location  *string   `json:"location" binding:"omitempty,max=255"`
	Interests *[]string `json:"interests"`
}

func (r userRequest) input() service.UserInput {
	return service.UserInput{
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		Role:      r.Role,
		Avatar:    r.Avatar,
		Bio:       r.Bio,
		Location:  r.Location,
		Interests: r.Interests,
	}
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	page := parsePage(c)
	users, total, err := h.userService.List(c.Request.Context(), service.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessPaged(c, users, total, page)
}

// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.userService.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "create", "user", user.ID, map[string]interface{}{"email": user.Email, "role": user.Role})
	Created(c, "user created", "user", user)
}

// GET /users/search
func (h *UserHandler) Search(c *gin.Context) {
	email := c.Query("email")
	name := c.Query("name")
	if email == "" && name == "" {
		BadRequest(c, service.ErrInvalidInput.Code, "email or name is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}
	excludeProjectID := parseID(c.Query("exclude_project_id"))

	users, err := h.userService.Search(c.Request.Context(), email, name, excludeProjectID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "users", users)
}

// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "user", profile)
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.userService.Update(c.Request.Context(), middleware.GetCurrentUser(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Role != nil {
		LogOperation(h.authService, c, "update_role", "user", user.ID, map[string]interface{}{"role": user.Role})
	}
	Updated(c, "user updated", "user", user)
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "delete", "user", id, nil)
	Message(c, "user deleted")
}

// GET /users/:id/hours
func (h *UserHandler) Hours(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if id != middleware.GetCurrentUserID(c) && !middleware.GetCurrentUserIsAdmin(c) {
		respondError(c, service.ErrForbidden)
		return
	}
	period, err := stats.ParsePeriod(c.Query("period"), stats.Monthly)
	if err != nil {
		BadRequest(c, service.ErrInvalidInput.Code, err.Error())
		return
	}
	summary, err := h.hoursService.Summary(c.Request.Context(), id, period, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "hours", summary)
}

// GET /admin/operation-logs
func (h *UserHandler) OperationLogs(c *gin.Context) {
	page := parsePage(c)

	var f service.OperationLogFilter
	if s := c.Query("user_id"); s != "" {
		v := parseID(s)
		f.UserID = &v
	}
	f.Action = c.Query("action")
	f.ResourceType = c.Query("resource_type")
	for key, dst := range map[string]**time.Time{"start_time": &f.StartTime, "end_time": &f.EndTime} {
		s := c.Query(key)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			BadRequest(c, service.ErrInvalidInput.Code, key+" must be RFC 3339")
			return
		}
		*dst = &t
	}

	logs, total, err := h.authService.GetOperationLogs(c.Request.Context(), f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessPaged(c, logs, total, page)
}

// LogOperation records a mutating action by the current user. Failures
// are logged and never fail the request.
func LogOperation(authService *service.AuthService, c *gin.Context, action, resourceType string, resourceID uint, detail map[string]interface{}) {
	userID := middleware.GetCurrentUserID(c)
	err := authService.CreateOperationLog(c.Request.Context(), &model.OperationLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Detail:       detail,
		IP:           c.ClientIP(),
	})
	if err != nil {
		zap.L().Warn("write operation log",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.Uint("resource_id", resourceID),
			zap.Error(err),
		)
	}
}
