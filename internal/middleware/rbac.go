package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

// Access describes who may reach a route.
type Access struct {
	Roles []models.UserRole
	// SelfParam names a path parameter; a caller whose user id equals it is let through.
	SelfParam string
}

// RBAC enforces role-based access control for routes.
func RBAC(access Access) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(access.Roles))
	for _, role := range access.Roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		claims, ok := claimsValue.(*models.JWTClaims)
		if !exists || !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		if access.SelfParam != "" {
			if target := c.Param(access.SelfParam); target != "" && target == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return RBAC(Access{Roles: roles})
}
