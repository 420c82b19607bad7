package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"knowledgehub/internal/domain"
	"knowledgehub/internal/repository"
)

const userContextKey = "auth.user"

// Auth returns middleware that resolves the bearer credential to an end-user
// identity. Anonymous requests and the internal service key are rejected
// outright: only genuine end-user tokens pass.
func Auth(users *repository.UserRepository, serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if serviceKey != "" && token == serviceKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "service credentials are not permitted"})
			return
		}

		user, err := users.GetByToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.GetHeader("X-API-Key")
}

// CurrentUser returns the authenticated user set by Auth.
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}
