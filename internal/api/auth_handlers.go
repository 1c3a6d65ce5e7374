package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

type TokenRequest struct {
	APIKey string `json:"api_key" binding:"required" example:"3f9a..."`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type WhoAmIResponse struct {
	Subject  string `json:"subject"`
	AuthType string `json:"auth_type"`
}

// tokenHandler godoc
// @Summary Exchange an API key for a token
// @Description Validate the admin API key and return a signed JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "API key"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/token [post]
func (s *Server) tokenHandler(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := s.authService.ValidateAPIKey(req.APIKey); err != nil {
		if errors.Is(err, ErrAPIKeyDisabled) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid API key"})
		return
	}

	token, expiresAt, err := s.authService.IssueToken(apiKeySubject)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate JWT token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// whoAmIHandler godoc
// @Summary Current credentials
// @Description Show how the request was authenticated
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} WhoAmIResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (s *Server) whoAmIHandler(c *gin.Context) {
	subject, ok := getSubject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, WhoAmIResponse{
		Subject:  subject,
		AuthType: getAuthType(c),
	})
}
