package middleware

import (
	"net/http"

	"carrier-rate-engine/pkg/utils"

	"github.com/gin-gonic/gin"
)

const RoleAdmin = "admin"

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextRole)
		if userRole == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "Role not found in context")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}

// AdminOnly guards the configuration endpoints.
func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(RoleAdmin)
}
