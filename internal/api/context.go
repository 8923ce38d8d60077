package api

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobportal/internal/api/middleware"
)

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}

// idParam 解析路径参数中的正整数 ID。
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func loggerFor(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := middleware.RequestLogger(c); ok {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
