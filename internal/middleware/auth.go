package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"morse-service/internal/auth"
	"morse-service/internal/repositories"
)

// ContextUserKey is where the authenticated user lands in the gin context.
const ContextUserKey = "user"

// AuthMiddleware validates the Authorization header and loads the user.
func AuthMiddleware(verifier *auth.Verifier, users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		userID, err := verifier.UserID(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}
