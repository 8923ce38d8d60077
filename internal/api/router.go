package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"jobportal/internal/api/middleware"
	"jobportal/internal/config"
	"jobportal/internal/metrics"
)

// NewRouter 构建 Gin 引擎：恢复、Correlation ID、请求日志、指标与 CORS，
// 并暴露 /health、/metrics 与前端静态资源回退。
func NewRouter(cfg config.APIConfig, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
	)

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Correlation-ID"}
		corsConfig.ExposeHeaders = []string{"X-Correlation-ID"}
		corsConfig.MaxAge = 12 * time.Hour
		router.Use(cors.New(corsConfig))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.NoRoute(spaFallback(cfg.FrontendDist))

	return router
}

// spaFallback 为非 API 的 GET 请求提供前端构建产物，找不到文件时回退到 index.html。
func spaFallback(dist string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/api" || dist == "" ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			NotFound(c, "Route not found.")
			return
		}

		candidate := filepath.Join(dist, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}

		index := filepath.Join(dist, "index.html")
		if _, err := os.Stat(index); err != nil {
			NotFound(c, "Route not found.")
			return
		}
		c.File(index)
	}
}
