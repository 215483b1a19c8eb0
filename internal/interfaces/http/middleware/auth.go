// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/premiumdrop/storefront/internal/pkg/auth"
)

const (
	adminEmailKey  = "admin_email"
	tokenClaimsKey = "token_claims"
)

// AdminAuth requires a valid admin access token
func AdminAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Set(adminEmailKey, claims.Email)
		c.Set(tokenClaimsKey, claims)

		c.Next()
	}
}

// GetAdminEmailFromContext extracts the operator email set by AdminAuth
func GetAdminEmailFromContext(c *gin.Context) (string, bool) {
	email, exists := c.Get(adminEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}
