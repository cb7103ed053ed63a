package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interiorerp/internal/models"
)

func RequireRoles(allowed ...models.Role) gin.HandlerFunc {
	allowedSet := map[models.Role]struct{}{}
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		v, exists := c.Get(CtxRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no role in context"})
			return
		}
		role, _ := v.(models.Role)
		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// TenantGuard rejects tokens issued for a tenant the profile no longer belongs to,
// e.g. after a tenant switch in another session.
func TenantGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Next()
			return
		}
		tenantID := c.GetString(CtxTenantID)
		if tenantID != "" && !u.InTenant(tenantID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "tenant access revoked"})
			return
		}
		c.Next()
	}
}
