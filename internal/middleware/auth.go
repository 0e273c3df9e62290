package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"resumecraft_backend/internal/apperrors"
	"resumecraft_backend/internal/auth"
	"resumecraft_backend/internal/logger"
	"resumecraft_backend/internal/models"
)

// AuthMiddleware validates the bearer token and stores the claims for
// downstream handlers. The user id is also attached to the request context
// so log lines pick it up.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RoleMiddleware allows the request through only for the given role.
func RoleMiddleware(requiredRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			apperrors.HandleError(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		role, ok := roleVal.(models.UserRole)
		if !ok {
			roleStr, isString := roleVal.(string)
			if !isString {
				apperrors.HandleError(c, apperrors.ErrForbidden)
				c.Abort()
				return
			}
			role = models.UserRole(roleStr)
		}

		if role != requiredRole {
			apperrors.HandleError(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user id, or "" when unauthenticated.
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get("userID")
	if !exists {
		return ""
	}
	id, ok := userID.(string)
	if !ok {
		return ""
	}
	return id
}
