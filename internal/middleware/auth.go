package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrigo/internal/domain"
)

const principalKey = "principal"

// AuthMiddleware extracts the authenticated principal from the identity
// headers set by the edge gateway. The gateway has already verified the
// credentials; requests without the headers are rejected.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		role := domain.Role(c.GetHeader("X-User-Role"))

		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		switch role {
		case domain.RoleClient, domain.RoleDriver, domain.RoleAdmin:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown role"})
			return
		}

		c.Set(principalKey, domain.Principal{UserID: userID, Role: role})
		c.Next()
	}
}

// GetPrincipal returns the principal attached by AuthMiddleware.
func GetPrincipal(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}
