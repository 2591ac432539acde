package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/etrackfac-api/internal/handler"
	"github.com/noah-isme/etrackfac-api/internal/middleware"
	"github.com/noah-isme/etrackfac-api/internal/models"
	"github.com/noah-isme/etrackfac-api/internal/service"
	"github.com/noah-isme/etrackfac-api/pkg/config"
	"github.com/noah-isme/etrackfac-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/etrackfac-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/etrackfac-api/pkg/middleware/requestid"
)

// apiHandlers bundles the HTTP handlers the router mounts.
type apiHandlers struct {
	auth          *handler.AuthHandler
	users         *handler.UserHandler
	departments   *handler.DepartmentHandler
	semesters     *handler.SemesterHandler
	requirements  *handler.RequirementHandler
	submissions   *handler.SubmissionHandler
	reviews       *handler.ReviewHandler
	reports       *handler.ReportHandler
	notifications *handler.NotificationHandler
}

// buildRouter assembles the gin engine: global middleware, operational
// endpoints and the API route table.
func buildRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, metricsService *service.MetricsService, authService *service.AuthService, h apiHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/login", h.auth.Login)
	api.POST("/register", h.auth.Register)
	api.POST("/refresh", h.auth.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.POST("/logout", h.auth.Logout)
	protected.POST("/change-password", h.auth.ChangePassword)
	protected.GET("/user", h.auth.Me)

	protected.GET("/departments", h.departments.List)

	submissions := protected.Group("/submissions")
	{
		submissions.GET("/checklist", middleware.RequireRoles(models.RoleFaculty), h.submissions.Checklist)
		submissions.POST("/upload", middleware.RequireRoles(models.RoleFaculty), h.submissions.Upload)
		submissions.GET("/download", h.submissions.Download)
		submissions.GET("/:id", h.submissions.Get)
		submissions.GET("/:id/download", h.submissions.DownloadByID)
		submissions.POST("/:id/download-token", h.submissions.DownloadToken)
	}

	reviews := protected.Group("/reviews")
	reviews.Use(middleware.RequireRoles(models.RoleProgramChair, models.RoleDean, models.RoleAdmin))
	{
		reviews.GET("", h.reviews.Queue)
		reviews.POST("/:id", h.reviews.Review)
	}

	protected.GET("/compliance", middleware.RequireRoles(models.RoleProgramChair, models.RoleDean, models.RoleAdmin), h.reports.Matrix)

	reports := protected.Group("/reports")
	reports.Use(middleware.RequireRoles(models.RoleDean, models.RoleAdmin))
	{
		reports.GET("", h.reports.Summary)
		reports.GET("/export", h.reports.Export)
	}

	semesters := protected.Group("/semesters")
	{
		semesters.GET("", h.semesters.List)
		semesters.GET("/active", h.semesters.GetActive)
		semesters.GET("/:id", h.semesters.Get)
		semesters.POST("", middleware.RequireRoles(models.RoleAdmin), h.semesters.Create)
		semesters.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.semesters.Update)
		semesters.POST("/:id/activate", middleware.RequireRoles(models.RoleAdmin), h.semesters.Activate)
		semesters.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.semesters.Delete)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		requirements := admin.Group("/requirements")
		{
			requirements.GET("", h.requirements.List)
			requirements.GET("/:id", h.requirements.Get)
			requirements.POST("", h.requirements.Create)
			requirements.PUT("/:id", h.requirements.Update)
			requirements.DELETE("/:id", h.requirements.Delete)
		}

		adminUsers := admin.Group("/users")
		{
			adminUsers.GET("", h.users.List)
			adminUsers.POST("", h.users.Create)
			adminUsers.GET("/:id", h.users.Get)
			adminUsers.PUT("/:id", h.users.Update)
			adminUsers.DELETE("/:id", h.users.Delete)
			adminUsers.POST("/:id/approve", h.users.Approve)
			adminUsers.GET("/:id/submissions", h.reviews.FacultySubmissions)
		}
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.notifications.List)
		notifications.PUT("/:id/read", h.notifications.MarkRead)
		notifications.PUT("/read-all", h.notifications.MarkAllRead)
	}

	return r
}
