package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ksred/ironforge/internal/database"
)

// Tool and resource names
const (
	ToolMigrate         = "migrate"
	ToolMigrationStatus = "migration_status"
	ToolSeed            = "seed"

	ResourceHistory = "migrations://history"
)

// MigrateRequest represents the arguments of the migrate tool
type MigrateRequest struct {
	Mode string `json:"mode"`
}

func modeNames() []string {
	modes := database.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return names
}

// Tools describes every tool the handler can call
func Tools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        ToolMigrate,
			Description: "Run the registered schema migrations. 'run' applies pending migrations, 'rollback' reverts applied ones, 'refresh' and 'reset' revert and reapply, 'fresh' drops every table and rebuilds, 'down' drops every table.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"mode": map[string]interface{}{
						"type":        "string",
						"description": "Migration mode (default: run)",
						"enum":        modeNames(),
					},
				},
			},
		},
		{
			Name:        ToolMigrationStatus,
			Description: "List the applied migrations in execution order and the ones still pending",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
			},
		},
		{
			Name:        ToolSeed,
			Description: "Fill the users, posts and roles tables with generated rows",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"users": map[string]interface{}{
						"type":        "integer",
						"description": "Number of users to create",
						"minimum":     0,
						"maximum":     1000,
					},
					"posts_per_user": map[string]interface{}{
						"type":        "integer",
						"description": "Number of posts per user",
						"minimum":     0,
						"maximum":     100,
					},
					"roles": map[string]interface{}{
						"type":        "integer",
						"description": "Number of roles shared round robin by the users",
						"minimum":     0,
						"maximum":     100,
					},
				},
				Required: []string{"users"},
			},
		},
	}
}

// Resources describes every resource the handler can read
func Resources() []mcp.Resource {
	return []mcp.Resource{
		{
			URI:         ResourceHistory,
			Name:        "Migration History",
			Description: "Applied migrations in execution order",
			MIMEType:    "application/json",
		},
	}
}
