package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reachbase/reachbase-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey      = "userID"
	ContextWorkspaceIDKey = "workspaceID"
	ContextRoleKey        = "role"
)

// AuthMiddleware проверяет JWT access токен и кладёт клеймы в контекст.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		claims, err := tokens.ParseAccess(raw)
		if err != nil || claims.UserID == uuid.Nil || claims.WorkspaceID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextWorkspaceIDKey, claims.WorkspaceID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}
