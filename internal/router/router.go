package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/handler"
	"github.com/mrhexvel/ezgu/internal/middleware"
	"github.com/mrhexvel/ezgu/internal/model"
	"github.com/mrhexvel/ezgu/internal/tokenstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB          *gorm.DB
	Log         *zap.Logger
	JWTSecret   string
	CookieName  string
	Revoker     tokenstore.Revoker
	CORSOrigins []string
	UploadDir   string
	UploadURL   string

	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	ProjectHandler     *handler.ProjectHandler
	InvitationHandler  *handler.InvitationHandler
	HoursHandler       *handler.HoursHandler
	CategoryHandler    *handler.CategoryHandler
	NewsHandler        *handler.ArticleHandler
	StoryHandler       *handler.ArticleHandler
	AchievementHandler *handler.AchievementHandler
	DashboardHandler   *handler.DashboardHandler
	UploadHandler      *handler.UploadHandler
	HealthHandler      *handler.HealthHandler
}

func Setup(r *gin.Engine, deps Deps) {
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.CORSMiddleware(deps.CORSOrigins))

	r.GET("/healthz", deps.HealthHandler.Check)
	if deps.UploadDir != "" && deps.UploadURL != "" {
		r.Static(deps.UploadURL, deps.UploadDir)
	}

	organizer := middleware.RequireRole(model.RoleOrganizer)
	admin := middleware.RequireAdmin()

	api := r.Group("/api/v1")

	// Public routes (no auth)
	{
		api.POST("/auth/register", deps.AuthHandler.Register)
		api.POST("/auth/login", deps.AuthHandler.Login)
		api.POST("/auth/reset-password", deps.AuthHandler.RequestPasswordReset)
		api.POST("/auth/reset-password/confirm", deps.AuthHandler.ConfirmPasswordReset)

		api.GET("/projects", deps.ProjectHandler.List)
		api.GET("/projects/:id", deps.ProjectHandler.Get)
		api.GET("/categories", deps.CategoryHandler.List)
		api.GET("/categories/:id", deps.CategoryHandler.Get)
		api.GET("/achievements", deps.AchievementHandler.List)
		api.GET("/achievements/:id", deps.AchievementHandler.Get)
		api.GET("/news", deps.NewsHandler.List)
		api.GET("/news/:id", deps.NewsHandler.Get)
		api.GET("/stories", deps.StoryHandler.List)
		api.GET("/stories/:id", deps.StoryHandler.Get)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.CookieName, deps.DB, deps.Revoker))
	{
		// Auth
		authed.POST("/auth/logout", deps.AuthHandler.Logout)
		authed.GET("/auth/me", deps.AuthHandler.Me)

		// Users
		authed.GET("/users", admin, deps.UserHandler.List)
		authed.POST("/users", admin, deps.UserHandler.Create)
		authed.GET("/users/search", deps.UserHandler.Search)
		authed.GET("/users/:id", deps.UserHandler.Get)
		authed.PUT("/users/:id", deps.UserHandler.Update)
		authed.DELETE("/users/:id", admin, deps.UserHandler.Delete)
		authed.GET("/users/:id/hours", deps.UserHandler.Hours)

		// Projects
		authed.GET("/projects/mine", deps.ProjectHandler.Mine)
		authed.POST("/projects", organizer, deps.ProjectHandler.Create)
		authed.PUT("/projects/:id", organizer, deps.ProjectHandler.Update)
		authed.DELETE("/projects/:id", admin, deps.ProjectHandler.Delete)
		authed.GET("/projects/:id/participants", deps.ProjectHandler.Participants)
		authed.POST("/projects/:id/join", deps.ProjectHandler.Join)
		authed.DELETE("/projects/:id/join", deps.ProjectHandler.Leave)
		authed.POST("/projects/:id/invite", organizer, deps.InvitationHandler.Invite)
		authed.POST("/projects/:id/hours", organizer, deps.HoursHandler.Award)
		authed.GET("/projects/:id/hours", organizer, deps.HoursHandler.List)

		// Invitations
		authed.GET("/invitations", deps.InvitationHandler.ListPending)
		authed.POST("/invitations/:id/accept", deps.InvitationHandler.Accept)
		authed.POST("/invitations/:id/decline", deps.InvitationHandler.Decline)

		// Categories
		authed.POST("/categories", admin, deps.CategoryHandler.Create)
		authed.PUT("/categories/:id", admin, deps.CategoryHandler.Update)
		authed.DELETE("/categories/:id", admin, deps.CategoryHandler.Delete)

		// News and stories
		for prefix, h := range map[string]*handler.ArticleHandler{"/news": deps.NewsHandler, "/stories": deps.StoryHandler} {
			authed.POST(prefix, organizer, h.Create)
			authed.PUT(prefix+"/:id", organizer, h.Update)
			authed.DELETE(prefix+"/:id", admin, h.Delete)
		}

		// Achievements
		authed.POST("/achievements", admin, deps.AchievementHandler.Create)
		authed.PUT("/achievements/:id", admin, deps.AchievementHandler.Update)
		authed.DELETE("/achievements/:id", admin, deps.AchievementHandler.Delete)
		authed.POST("/achievements/:id/award", organizer, deps.AchievementHandler.Award)
		authed.DELETE("/achievements/:id/award", admin, deps.AchievementHandler.Revoke)

		// Dashboard
		authed.GET("/dashboard/stats", deps.DashboardHandler.GetStats)

		// Upload
		authed.POST("/upload", deps.UploadHandler.Upload)

		// Admin routes
		adminGroup := authed.Group("/admin")
		adminGroup.Use(admin)
		{
			adminGroup.GET("/stats", deps.DashboardHandler.AdminStats)
			adminGroup.GET("/operation-logs", deps.UserHandler.OperationLogs)
		}
	}
}
