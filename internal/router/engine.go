package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/config"
	"github.com/mrhexvel/ezgu/internal/handler"
	"github.com/mrhexvel/ezgu/internal/notify"
	"github.com/mrhexvel/ezgu/internal/service"
	"github.com/mrhexvel/ezgu/internal/tokenstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewEngine wires services and handlers on db and returns the gin engine
// serving the API.
func NewEngine(cfg *config.Config, db *gorm.DB, log *zap.Logger, revoker tokenstore.Revoker, notifier notify.Notifier) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.Upload.MaxBytes + 1<<20

	// Services
	authService := service.NewAuthService(db, notifier, log, cfg.JWT.Secret, cfg.JWT.Expire())
	userService := service.NewUserService(db)
	projectService := service.NewProjectService(db)
	participationService := service.NewParticipationService(db)
	invitationService := service.NewInvitationService(db, notifier, log)
	hoursService := service.NewHoursService(db, notifier, log)
	categoryService := service.NewCategoryService(db)
	achievementService := service.NewAchievementService(db)
	dashboardService := service.NewDashboardService(db)
	uploadService := service.NewUploadService(cfg.Upload.Dir, cfg.Upload.URLPrefix, cfg.Upload.MaxBytes)

	cookie := handler.CookieConfig{
		Name:   cfg.JWT.CookieName,
		Secure: cfg.JWT.CookieSecure || cfg.Server.Mode == "release",
	}

	Setup(r, Deps{
		DB:          db,
		Log:         log,
		JWTSecret:   cfg.JWT.Secret,
		CookieName:  cfg.JWT.CookieName,
		Revoker:     revoker,
		CORSOrigins: cfg.Server.CORSOrigins,
		UploadDir:   cfg.Upload.Dir,
		UploadURL:   cfg.Upload.URLPrefix,

		AuthHandler:        handler.NewAuthHandler(authService, revoker, cookie),
		UserHandler:        handler.NewUserHandler(userService, hoursService, authService),
		ProjectHandler:     handler.NewProjectHandler(projectService, participationService, authService),
		InvitationHandler:  handler.NewInvitationHandler(invitationService, authService),
		HoursHandler:       handler.NewHoursHandler(hoursService, authService),
		CategoryHandler:    handler.NewCategoryHandler(categoryService, authService),
		NewsHandler:        handler.NewArticleHandler(service.NewNewsService(db), authService),
		StoryHandler:       handler.NewArticleHandler(service.NewStoryService(db), authService),
		AchievementHandler: handler.NewAchievementHandler(achievementService, authService),
		DashboardHandler:   handler.NewDashboardHandler(dashboardService),
		UploadHandler:      handler.NewUploadHandler(uploadService),
		HealthHandler:      handler.NewHealthHandler(db),
	})
	return r
}
