package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/services"
)

// Server wraps the MCP server with our application logic
type Server struct {
	mcpServer *server.MCPServer
	handler   *Handler
	logger    zerolog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(migrations *services.MigrationService, seeds *services.SeedService, logger zerolog.Logger) (*Server, error) {
	if migrations == nil {
		return nil, fmt.Errorf("migration service is required")
	}

	mcpServer := server.NewMCPServer(
		"ironforge",
		"1.0.0",
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		handler:   NewHandler(migrations, seeds, logger),
		logger:    logger,
	}

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s, nil
}

// Handler returns the tool handler shared with the HTTP surface
func (s *Server) Handler() *Handler {
	return s.handler
}

// Serve starts the MCP server on stdio
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Debug().Msg("Starting MCP server ServeStdio")
	err := server.ServeStdio(s.mcpServer)
	if err != nil {
		s.logger.Error().Err(err).Msg("MCP server ServeStdio error")
	}
	return err
}

func (s *Server) registerTools() {
	tools := Tools()
	for _, tool := range tools {
		s.mcpServer.AddTool(tool, s.createToolHandler(tool.Name))
	}
	s.logger.Info().Int("count", len(tools)).Msg("Registered MCP tools")
}

func (s *Server) registerResources() {
	resources := Resources()
	for _, resource := range resources {
		s.mcpServer.AddResource(resource, s.createResourceHandler())
	}
	s.logger.Info().Int("count", len(resources)).Msg("Registered MCP resources")
}

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.Prompt{
		Name:        "migrate_database",
		Description: "Template for migrating the database in a given mode",
		Arguments: []mcp.PromptArgument{
			{
				Name:        "mode",
				Description: "Migration mode, run when omitted",
				Required:    false,
			},
		},
	}, s.createMigratePromptHandler())

	s.logger.Info().Int("count", 1).Msg("Registered MCP prompts")
}

func toolError(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: fmt.Sprintf(format, args...),
			},
		},
		IsError: true,
	}
}

func (s *Server) createToolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.logger.Debug().Str("tool", name).Msg("Tool handler called")

		jsonData, err := json.Marshal(request.GetArguments())
		if err != nil {
			return toolError("Failed to parse arguments: %v", err), nil
		}

		response, err := s.handler.CallTool(ctx, name, jsonData)
		if err != nil {
			return toolError("Error: %v", err), nil
		}

		resultJSON, err := response.ToJSON()
		if err != nil {
			return toolError("Failed to marshal result: %v", err), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: string(resultJSON),
				},
			},
			IsError: !response.Success,
		}, nil
	}
}

func (s *Server) createResourceHandler() server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		body, err := s.handler.ReadResource(ctx, request.Params.URI)
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     body,
			},
		}, nil
	}
}

func (s *Server) createMigratePromptHandler() server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		mode := "run"
		if m, ok := request.Params.Arguments["mode"]; ok && m != "" {
			mode = m
		}

		return &mcp.GetPromptResult{
			Messages: []mcp.PromptMessage{
				{
					Role: "user",
					Content: mcp.TextContent{
						Type: "text",
						Text: fmt.Sprintf("Check the migration status, then call the migrate tool with mode %s and summarise the outcome of every migration.", mode),
					},
				},
			},
		}, nil
	}
}
