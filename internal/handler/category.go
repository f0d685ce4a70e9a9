package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/service"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	authService     *service.AuthService
}

func NewCategoryHandler(categoryService *service.CategoryService, authService *service.AuthService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, authService: authService}
}

type categoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=128"`
	Description *string `json:"description"`
	Color       *string `json:"color" binding:"omitempty,max=32"`
	Icon        *string `json:"icon" binding:"omitempty,max=64"`
}

func (r categoryRequest) input() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Description: r.Description, Color: r.Color, Icon: r.Icon}
}

// GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "categories", categories)
}

// GET /categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categoryService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, "category", category)
}

// POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "create", "category", category.ID, map[string]interface{}{"name": category.Name})
	Created(c, "category created", "category", category)
}

// PUT /categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "update", "category", id, nil)
	Updated(c, "category updated", "category", category)
}

// DELETE /categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "delete", "category", id, nil)
	Message(c, "category deleted")
}
