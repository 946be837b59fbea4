package delivery

import (
	"net/http"

	"studysync-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "jwt"

// AuthMiddleware authenticates requests from the session cookie and
// injects the subject email into the context. Missing cookie is a 401,
// an invalid or expired token a 403.
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no session token found"})
			c.Abort()
			return
		}

		email, err := authUsecase.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("email", email)
		c.Next()
	}
}

// UserEmail returns the authenticated email set by AuthMiddleware.
func UserEmail(c *gin.Context) string {
	return c.GetString("email")
}
