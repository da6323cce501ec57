package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "bearer "

// TokenValidator validates actor access tokens. *security.TokenProvider implements it.
type TokenValidator interface {
	ValidateAccess(token string) (userID, displayName string, err error)
}

// Auth validates the Bearer access token and stores the actor in the request context.
// Requests without a valid token are rejected with 401.
func Auth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthenticated(c)
			return
		}
		userID, displayName, err := tokens.ValidateAccess(token)
		if err != nil {
			abortUnauthenticated(c)
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), userID, displayName))
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{
		"code":    "UNAUTHENTICATED",
		"message": "missing or invalid authorization",
	}})
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
