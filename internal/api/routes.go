package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"jobportal/internal/api/middleware"
	"jobportal/internal/auth"
	"jobportal/internal/config"
	"jobportal/internal/notify"
)

// Dependencies 汇总路由所需的外部依赖。Queue、Publisher、Redis、Scanner 可以为 nil。
type Dependencies struct {
	DB        *gorm.DB
	Auth      *auth.AuthService
	Storage   ObjectStorage
	Scanner   FileScanner
	Queue     TaskEnqueuer
	Publisher notify.Publisher
	Redis     redis.UniversalClient
	Logger    *slog.Logger
	Config    *config.Config
}

// RegisterRoutes 在 /api/v1 下注册全部业务路由。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	uploader := NewUploader(deps.Storage, deps.Scanner, cfg.Upload.MaxBytes)
	throttle := NewLoginThrottle(deps.Redis, cfg.Auth.LoginRateLimitPerHour, cfg.Auth.LoginLockThreshold, cfg.Auth.LoginLockTTL)
	cookie := CookieOptions{Domain: cfg.API.CookieDomain, Secure: cfg.API.CookieSecure}

	userHandler := NewUserHandler(deps.DB, deps.Auth, uploader, throttle, deps.Logger, cookie)
	companyHandler := NewCompanyHandler(deps.DB, uploader, deps.Logger)
	jobHandler := NewJobHandler(deps.DB, deps.Logger)
	applicationHandler := NewApplicationHandler(deps.DB, deps.Queue, deps.Publisher, deps.Logger)
	savedJobHandler := NewSavedJobHandler(deps.DB, deps.Logger)
	wsHandler := NewWsHandler(deps.Redis, deps.Logger, cfg.API.AllowedOrigins)
	authMiddleware := middleware.AuthMiddleware(deps.Auth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/notifications/ws", authMiddleware, wsHandler.HandleConnection)

		userGroup := v1.Group("/user")
		{
			userGroup.POST("/register", userHandler.Register)
			userGroup.POST("/login", userHandler.Login)
			userGroup.GET("/logout", authMiddleware, userHandler.Logout)
			userGroup.POST("/profile/update", authMiddleware, userHandler.UpdateProfile)
		}

		companyGroup := v1.Group("/company")
		companyGroup.Use(authMiddleware)
		{
			companyGroup.POST("/register", companyHandler.Register)
			companyGroup.GET("/get", companyHandler.List)
			companyGroup.GET("/get/:id", companyHandler.Get)
			companyGroup.PUT("/update/:id", companyHandler.Update)
			companyGroup.DELETE("/:id", companyHandler.Delete)
		}

		jobGroup := v1.Group("/job")
		{
			jobGroup.GET("/get", jobHandler.List)
			jobGroup.POST("/post", authMiddleware, jobHandler.Post)
			jobGroup.GET("/get/:id", authMiddleware, jobHandler.Get)
			jobGroup.GET("/getadminjobs", authMiddleware, jobHandler.AdminJobs)
			jobGroup.PUT("/update/:id", authMiddleware, jobHandler.Update)
			jobGroup.DELETE("/:id", authMiddleware, jobHandler.Delete)
		}

		applicationGroup := v1.Group("/application")
		applicationGroup.Use(authMiddleware)
		{
			applicationGroup.GET("/apply/:id", applicationHandler.Apply)
			applicationGroup.GET("/get", applicationHandler.Applied)
			applicationGroup.GET("/:id/applicants", applicationHandler.Applicants)
			applicationGroup.POST("/status/:id/update", applicationHandler.UpdateStatus)
		}

		savedGroup := v1.Group("/savedjobs")
		savedGroup.Use(authMiddleware)
		{
			savedGroup.POST("/save", savedJobHandler.Save)
			savedGroup.DELETE("/unsave/:jobId", savedJobHandler.Unsave)
			savedGroup.GET("/get", savedJobHandler.List)
		}
	}
}
