package middlewares

import (
	"net/http"
	"strings"

	"github.com/buildtrack/matstock_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and stashes the caller identity
// in the request context. Requests without a token are rejected.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		validate, err := utils.JwtValidate(token)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claims, _ := validate.Claims.(*utils.JwtCustomClaim)

		ctx := c.Request.Context()
		ctx = utils.SetUserIdInContext(ctx, claims.ID)
		ctx = utils.SetIsAdminInContext(ctx, claims.Role == "ADMIN")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminRequired gates administrator-only routes (reference-data deletes,
// bill/issue deletes, user management).
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, ok := utils.GetIsAdminFromContext(c.Request.Context())
		if !ok || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
