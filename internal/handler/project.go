package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/middleware"
	"github.com/mrhexvel/ezgu/internal/service"
)

type ProjectHandler struct {
	projectService       *service.ProjectService
	participationService *service.ParticipationService
	authService          *service.AuthService
}

func NewProjectHandler(projectService *service.ProjectService, participationService *service.ParticipationService, authService *service.AuthService) *ProjectHandler {
	return &ProjectHandler{
		projectService:       projectService,
		participationService: participationService,
		authService:          authService,
	}
}

type projectRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	Image       *string    `json:"image" binding:"omitempty,max=512"`
	Location    *string    `json:"location" binding:"omitempty,max=255"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      *string    `json:"status"`
	CategoryID  *uint      `json:"category_id"`
}

func (r projectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		Title:       r.Title,
		Description: r.Description,
		Image:       r.Image,
		Location:    r.Location,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Status:      r.Status,
		CategoryID:  r.CategoryID,
	}
}

// GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	page := parsePage(c)
	projects, total, err := h.projectService.List(c.Request.Context(), service.ProjectFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessPaged(c, projects, total, page)
}

// GET /projects/mine
func (h *ProjectHandler) Mine(c *gin.Context) {
	participations, err := h.participationService.ListForUser(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "participations", participations)
}

// GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "project", project)
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	project, err := h.projectService.Create(c.Request.Context(), req.input(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "create", "project", project.ID, map[string]interface{}{"title": project.Title})
	Created(c, "project created", "project", project)
}

// PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	project, err := h.projectService.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "update", "project", project.ID, nil)
	Updated(c, "project updated", "project", project)
}

// DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "delete", "project", id, nil)
	Message(c, "project deleted")
}

// POST /projects/:id/join
func (h *ProjectHandler) Join(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	participant, err := h.participationService.Join(c.Request.Context(), id, middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, "joined project", "participant", participant)
}

// DELETE /projects/:id/join
func (h *ProjectHandler) Leave(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.participationService.Leave(c.Request.Context(), id, middleware.GetCurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	Message(c, "left project")
}

// GET /projects/:id/participants
func (h *ProjectHandler) Participants(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.projectService.GetByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	participants, err := h.participationService.ListForProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "participants", participants)
}
