// README: Bearer-token auth middleware; resolves session tokens to caller uid/role.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"swiftdrop/internal/modules/identity"
)

// TokenVerifier resolves a raw bearer token to session claims. The identity
// service is the production implementation.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*identity.Claims, error)
}

const (
	ctxKeyUID  = "caller_uid"
	ctxKeyRole = "caller_role"
)

func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxKeyUID, claims.UID)
		c.Set(ctxKeyRole, claims.Role)
		c.Next()
	}
}

func CallerUID(c *gin.Context) string {
	return c.GetString(ctxKeyUID)
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxKeyRole)
}
