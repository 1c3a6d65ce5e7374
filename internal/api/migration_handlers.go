package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ksred/ironforge/internal/services"
	"github.com/ksred/ironforge/internal/utils"
)

// MigrationStatusResponse lists applied and pending migrations
type MigrationStatusResponse struct {
	*services.MigrationResult
	Pending []string `json:"pending"`
}

// listMigrationsHandler godoc
// @Summary Migration status
// @Description List applied migrations in execution order and the pending ones
// @Tags migrations
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} MigrationStatusResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /migrations [get]
func (s *Server) listMigrationsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	status, err := s.migrations.Status(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read migration status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read migration status"})
		return
	}

	pending, err := s.migrations.Pending(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list pending migrations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list pending migrations"})
		return
	}
	if pending == nil {
		pending = []string{}
	}

	c.JSON(http.StatusOK, MigrationStatusResponse{MigrationResult: status, Pending: pending})
}

// pendingMigrationsHandler godoc
// @Summary Pending migrations
// @Description List migrations that have not been applied
// @Tags migrations
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} string
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /migrations/pending [get]
func (s *Server) pendingMigrationsHandler(c *gin.Context) {
	pending, err := s.migrations.Pending(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list pending migrations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list pending migrations"})
		return
	}
	if pending == nil {
		pending = []string{}
	}

	c.JSON(http.StatusOK, pending)
}

// runMigrationsHandler godoc
// @Summary Run migrations
// @Description Process every registered migration in the given mode. Failed migrations are reported with status 207.
// @Tags migrations
// @Produce json
// @Security ApiKeyAuth
// @Param mode path string true "Migration mode" Enums(run, rollback, refresh, fresh, down, reset, status)
// @Success 200 {object} services.MigrationResult
// @Success 207 {object} services.MigrationResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /migrations/{mode} [post]
func (s *Server) runMigrationsHandler(c *gin.Context) {
	mode := c.Param("mode")

	result, err := s.migrations.Migrate(c.Request.Context(), mode)
	if err != nil {
		if utils.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		s.logger.Error().Err(err).Str("mode", mode).Msg("Failed to run migrations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to run migrations"})
		return
	}

	s.logger.Info().
		Str("mode", result.Mode).
		Bool("success", result.Success).
		Str("subject", c.GetString(subjectContextKey)).
		Msg("Migrations processed")

	if !result.Success {
		c.JSON(http.StatusMultiStatus, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// seedHandler godoc
// @Summary Seed example data
// @Description Create users with posts and roles from the model factories
// @Tags seed
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body services.SeedRequest true "Row counts"
// @Success 201 {object} services.SeedResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /seed [post]
func (s *Server) seedHandler(c *gin.Context) {
	var req services.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := s.seeds.Seed(c.Request.Context(), req)
	if err != nil {
		if utils.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to seed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to seed"})
		return
	}

	c.JSON(http.StatusCreated, result)
}
