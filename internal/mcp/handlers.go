package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/services"
	"github.com/ksred/ironforge/internal/utils"
)

// Handler manages MCP tool handlers
type Handler struct {
	migrations *services.MigrationService
	seeds      *services.SeedService
	logger     zerolog.Logger
}

// NewHandler creates a new MCP handler. seeds may be nil, which disables
// the seed tool.
func NewHandler(migrations *services.MigrationService, seeds *services.SeedService, logger zerolog.Logger) *Handler {
	return &Handler{
		migrations: migrations,
		seeds:      seeds,
		logger:     utils.WithComponent(logger, "mcp_handler"),
	}
}

// CallTool dispatches a tool call by name
func (h *Handler) CallTool(ctx context.Context, name string, params json.RawMessage) (*services.Response, error) {
	switch name {
	case ToolMigrate:
		return h.HandleMigrate(ctx, params)
	case ToolMigrationStatus:
		return h.HandleMigrationStatus(ctx, params)
	case ToolSeed:
		return h.HandleSeed(ctx, params)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// HandleMigrate handles the migrate MCP tool call
func (h *Handler) HandleMigrate(ctx context.Context, params json.RawMessage) (*services.Response, error) {
	h.logger.Debug().RawJSON("params", rawOrEmpty(params)).Msg("handleMigrate called")

	var req MigrateRequest
	if err := decodeParams(params, &req); err != nil {
		h.logger.Error().Err(err).Msg("failed to parse migrate request")
		return services.NewErrorResponse(fmt.Sprintf("invalid request format: %v", err)), nil
	}

	result, err := h.migrations.Migrate(ctx, req.Mode)
	if err != nil {
		if utils.IsValidationError(err) {
			h.logger.Warn().Str("mode", req.Mode).Msg("invalid migration mode")
		} else {
			h.logger.Error().Err(err).Str("mode", req.Mode).Msg("failed to migrate")
		}
		return services.NewErrorResponse(fmt.Sprintf("failed to migrate: %v", err)), nil
	}

	response := services.NewSuccessResponse(fmt.Sprintf("Migrations processed in %s mode", result.Mode), result)
	response.Meta = &services.ResponseMeta{Count: len(result.Outcomes), Mode: result.Mode}
	if !result.Success {
		response.Success = false
		response.Error = fmt.Sprintf("%d migration(s) failed", len(result.Errors))
	}

	h.logger.Info().
		Str("mode", result.Mode).
		Bool("success", result.Success).
		Int("count", len(result.Outcomes)).
		Msg("successfully processed migrations")

	return response, nil
}

// StatusResult lists applied and pending migrations
type StatusResult struct {
	*services.MigrationResult
	Pending []string `json:"pending"`
}

// HandleMigrationStatus handles the migration_status MCP tool call
func (h *Handler) HandleMigrationStatus(ctx context.Context, _ json.RawMessage) (*services.Response, error) {
	status, err := h.migrations.Status(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read migration status")
		return services.NewErrorResponse(fmt.Sprintf("failed to read migration status: %v", err)), nil
	}

	pending, err := h.migrations.Pending(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list pending migrations")
		return services.NewErrorResponse(fmt.Sprintf("failed to list pending migrations: %v", err)), nil
	}
	if pending == nil {
		pending = []string{}
	}

	response := services.NewSuccessResponse("Migration status", StatusResult{MigrationResult: status, Pending: pending})
	response.Meta = &services.ResponseMeta{Count: len(status.History), Mode: status.Mode}
	return response, nil
}

// HandleSeed handles the seed MCP tool call
func (h *Handler) HandleSeed(ctx context.Context, params json.RawMessage) (*services.Response, error) {
	if h.seeds == nil {
		return services.NewErrorResponse("seeding is not enabled"), nil
	}

	var req services.SeedRequest
	if err := decodeParams(params, &req); err != nil {
		h.logger.Error().Err(err).Msg("failed to parse seed request")
		return services.NewErrorResponse(fmt.Sprintf("invalid request format: %v", err)), nil
	}

	result, err := h.seeds.Seed(ctx, req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to seed")
		return services.NewErrorResponse(fmt.Sprintf("failed to seed: %v", err)), nil
	}

	return services.NewSuccessResponse(fmt.Sprintf("Seeded %d users", result.Users), result), nil
}

// ReadResource returns the JSON body of a resource
func (h *Handler) ReadResource(ctx context.Context, uri string) (string, error) {
	if uri != ResourceHistory {
		return "", utils.WrapNotFoundError("resource", uri)
	}

	status, err := h.migrations.Status(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(status.History)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func decodeParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return json.Unmarshal(params, v)
}

func rawOrEmpty(params json.RawMessage) json.RawMessage {
	if len(params) == 0 {
		return json.RawMessage("{}")
	}
	return params
}
