package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	authTypeBearer    = "bearer"
	authTypeAPIKey    = "apikey"
	subjectContextKey = "subject"
	authTypeKey       = "auth_type"

	apiKeySubject = "api-key"
)

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for API Key in header
		apiKey := c.GetHeader("X-API-Key")
		if apiKey != "" {
			if err := s.authService.ValidateAPIKey(apiKey); err != nil {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid API key"})
				c.Abort()
				return
			}

			c.Set(subjectContextKey, apiKeySubject)
			c.Set(authTypeKey, authTypeAPIKey)
			c.Next()
			return
		}

		// Check for Bearer token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != authTypeBearer {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid authorization format"})
			c.Abort()
			return
		}

		subject, err := s.authService.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid token"})
			c.Abort()
			return
		}

		c.Set(subjectContextKey, subject)
		c.Set(authTypeKey, authTypeBearer)
		c.Next()
	}
}

func getSubject(c *gin.Context) (string, bool) {
	subject, exists := c.Get(subjectContextKey)
	if !exists {
		return "", false
	}

	s, ok := subject.(string)
	return s, ok
}

func getAuthType(c *gin.Context) string {
	authType, _ := c.Get(authTypeKey)
	t, _ := authType.(string)
	return t
}
