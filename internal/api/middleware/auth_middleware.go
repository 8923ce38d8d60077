package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobportal/internal/auth"
)

// SessionCookieName 是承载会话 JWT 的 Cookie 名称。
const SessionCookieName = "token"

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "userID"

// TokenValidator is satisfied by *auth.AuthService.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.TokenClaims, error)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": msg})
}

// AuthMiddleware 校验 Cookie 中的会话令牌并将 userID 注入上下文。
// 只解析令牌，不加载用户记录。
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, err := c.Cookie(SessionCookieName)
		if err != nil || strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c, "User not authenticated")
			return
		}

		claims, err := validator.ValidateToken(rawToken)
		if err != nil {
			LoggerFromContext(c).Info("session token rejected", "error", err)
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}
