package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/middleware"
	"github.com/mrhexvel/ezgu/internal/service"
)

// ArticleHandler serves news and stories; key is the JSON field the
// single entity is returned under.
type ArticleHandler struct {
	articleService *service.ArticleService
	authService    *service.AuthService
	key            string
}

func NewArticleHandler(articleService *service.ArticleService, authService *service.AuthService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, authService: authService, key: articleService.Kind()}
}

type articleRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Excerpt     *string    `json:"excerpt"`
	Content     *string    `json:"content"`
	Image       *string    `json:"image" binding:"omitempty,max=512"`
	Featured    *bool      `json:"featured"`
	PublishedAt *time.Time `json:"published_at"`
}

func (r articleRequest) input() service.ArticleInput {
	return service.ArticleInput{
		Title:       r.Title,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		Image:       r.Image,
		Featured:    r.Featured,
		PublishedAt: r.PublishedAt,
	}
}

// GET /news, GET /stories
func (h *ArticleHandler) List(c *gin.Context) {
	page := parsePage(c)
	list, total, err := h.articleService.List(c.Request.Context(), service.ArticleFilter{
		Search:   c.Query("search"),
		Featured: parseBoolQuery(c, "featured"),
	}, page)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessPaged(c, list, total, page)
}

// GET /news/:id, GET /stories/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.articleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, h.key, article)
}

// POST /news, POST /stories
func (h *ArticleHandler) Create(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	article, err := h.articleService.Create(c.Request.Context(), req.input(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "create", h.key, article.ID, map[string]interface{}{"title": article.Title})
	Created(c, h.key+" created", h.key, article)
}

// PUT /news/:id, PUT /stories/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	article, err := h.articleService.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "update", h.key, id, nil)
	Updated(c, h.key+" updated", h.key, article)
}

// DELETE /news/:id, DELETE /stories/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.articleService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	LogOperation(h.authService, c, "delete", h.key, id, nil)
	Message(c, h.key+" deleted")
}
