package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/ironforge/internal/database"
	"github.com/ksred/ironforge/internal/database/migrations"
	"github.com/ksred/ironforge/internal/models"
	"github.com/ksred/ironforge/internal/services"
	"github.com/ksred/ironforge/internal/utils"
)

func setupServer(t *testing.T) *Server {
	db := database.TestDatabase(t)
	migrationService, err := services.NewDefaultMigrationService(db, zerolog.Nop())
	require.NoError(t, err)
	seedService, err := services.NewSeedService(db, nil, zerolog.Nop())
	require.NoError(t, err)

	s, err := NewServer(migrationService, seedService, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func decodeData(t *testing.T, response *services.Response, v interface{}) {
	raw, err := json.Marshal(response.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestNewServer_RequiresMigrations(t *testing.T) {
	_, err := NewServer(nil, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestTools(t *testing.T) {
	var names []string
	for _, tool := range Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{ToolMigrate, ToolMigrationStatus, ToolSeed}, names)

	mode := Tools()[0].InputSchema.Properties["mode"].(map[string]interface{})
	assert.Contains(t, mode["enum"], "fresh")
	assert.Contains(t, mode["enum"], "status")

	require.Len(t, Resources(), 1)
	assert.Equal(t, ResourceHistory, Resources()[0].URI)
}

func TestHandler_Migrate(t *testing.T) {
	ctx := context.Background()
	h := setupServer(t).Handler()
	total := len(migrations.GetMigrations())

	response, err := h.CallTool(ctx, ToolMigrate, json.RawMessage(`{"mode":"run"}`))
	require.NoError(t, err)
	assert.True(t, response.Success)
	require.NotNil(t, response.Meta)
	assert.Equal(t, total, response.Meta.Count)
	assert.Equal(t, "run", response.Meta.Mode)

	var result services.MigrationResult
	decodeData(t, response, &result)
	assert.Equal(t, total, result.Summary["applied"])

	// an empty argument object defaults to run
	response, err = h.CallTool(ctx, ToolMigrate, nil)
	require.NoError(t, err)
	decodeData(t, response, &result)
	assert.Equal(t, total, result.Summary["skipped"])
}

func TestHandler_MigrateInvalid(t *testing.T) {
	ctx := context.Background()
	h := setupServer(t).Handler()

	response, err := h.CallTool(ctx, ToolMigrate, json.RawMessage(`{"mode":"sideways"}`))
	require.NoError(t, err)
	assert.False(t, response.Success)
	assert.Contains(t, response.Error, "sideways")

	response, err = h.CallTool(ctx, ToolMigrate, json.RawMessage(`{"mode":7}`))
	require.NoError(t, err)
	assert.False(t, response.Success)
	assert.Contains(t, response.Error, "invalid request format")

	_, err = h.CallTool(ctx, "drop_everything", nil)
	assert.Error(t, err)
}

func TestHandler_MigrationStatus(t *testing.T) {
	ctx := context.Background()
	h := setupServer(t).Handler()
	total := len(migrations.GetMigrations())

	response, err := h.CallTool(ctx, ToolMigrationStatus, nil)
	require.NoError(t, err)
	require.True(t, response.Success)

	var status struct {
		History []models.MigrationHistory `json:"history"`
		Pending []string                  `json:"pending"`
	}
	decodeData(t, response, &status)
	assert.Empty(t, status.History)
	assert.Len(t, status.Pending, total)

	_, err = h.CallTool(ctx, ToolMigrate, json.RawMessage(`{"mode":"run"}`))
	require.NoError(t, err)

	response, err = h.CallTool(ctx, ToolMigrationStatus, nil)
	require.NoError(t, err)
	decodeData(t, response, &status)
	assert.Len(t, status.History, total)
	assert.Empty(t, status.Pending)
}

func TestHandler_Seed(t *testing.T) {
	ctx := context.Background()
	h := setupServer(t).Handler()

	_, err := h.CallTool(ctx, ToolMigrate, nil)
	require.NoError(t, err)

	response, err := h.CallTool(ctx, ToolSeed, json.RawMessage(`{"users":3,"posts_per_user":1,"roles":2}`))
	require.NoError(t, err)
	require.True(t, response.Success, response.Error)

	var result services.SeedResult
	decodeData(t, response, &result)
	assert.Equal(t, services.SeedResult{Users: 3, Posts: 3, Roles: 2, RoleLinks: 3}, result)

	response, err = h.CallTool(ctx, ToolSeed, json.RawMessage(`{"users":-1}`))
	require.NoError(t, err)
	assert.False(t, response.Success)
}

func TestHandler_SeedDisabled(t *testing.T) {
	db := database.TestDatabase(t)
	migrationService, err := services.NewDefaultMigrationService(db, zerolog.Nop())
	require.NoError(t, err)

	h := NewHandler(migrationService, nil, zerolog.Nop())
	response, err := h.HandleSeed(context.Background(), json.RawMessage(`{"users":1}`))
	require.NoError(t, err)
	assert.False(t, response.Success)
	assert.Equal(t, "seeding is not enabled", response.Error)
}

func TestHandler_ReadResource(t *testing.T) {
	ctx := context.Background()
	h := setupServer(t).Handler()

	_, err := h.CallTool(ctx, ToolMigrate, nil)
	require.NoError(t, err)

	body, err := h.ReadResource(ctx, ResourceHistory)
	require.NoError(t, err)

	var history []models.MigrationHistory
	require.NoError(t, json.Unmarshal([]byte(body), &history))
	require.Len(t, history, len(migrations.GetMigrations()))
	assert.Equal(t, "001_create_users_table", history[0].Migration)

	_, err = h.ReadResource(ctx, "migrations://nowhere")
	assert.True(t, utils.IsNotFoundError(err))
}

func TestServer_ToolHandler(t *testing.T) {
	s := setupServer(t)

	var request mcp.CallToolRequest
	request.Params.Name = ToolMigrate
	request.Params.Arguments = map[string]interface{}{"mode": "run"}

	result, err := s.createToolHandler(ToolMigrate)(context.Background(), request)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"success":true`)

	request.Params.Arguments = map[string]interface{}{"mode": "sideways"}
	result, err = s.createToolHandler(ToolMigrate)(context.Background(), request)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_ResourceHandler(t *testing.T) {
	s := setupServer(t)

	var request mcp.ReadResourceRequest
	request.Params.URI = ResourceHistory

	contents, err := s.createResourceHandler()(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)
}

func TestServer_MigratePrompt(t *testing.T) {
	s := setupServer(t)

	var request mcp.GetPromptRequest
	request.Params.Arguments = map[string]string{"mode": "fresh"}

	result, err := s.createMigratePromptHandler()(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)

	text, ok := result.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "mode fresh")
}
