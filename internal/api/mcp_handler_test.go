package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/ironforge/internal/mcp"
)

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *MCPError       `json:"error"`
	ID      interface{}     `json:"id"`
}

func callMCP(t *testing.T, server *Server, method string, params interface{}) rpcEnvelope {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		body["params"] = params
	}

	rec := doRequest(server, http.MethodPost, "/api/v1/mcp", body, apiKeyHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope rpcEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "2.0", envelope.JSONRPC)
	return envelope
}

func TestHandleMCP_Initialize(t *testing.T) {
	server := setupTestServer(t)

	envelope := callMCP(t, server, "initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]string{"name": "test", "version": "0.0.1"},
	})
	require.Nil(t, envelope.Error)
	assert.Contains(t, string(envelope.Result), `"ironforge"`)
}

func TestHandleMCP_ListTools(t *testing.T) {
	server := setupTestServer(t)

	envelope := callMCP(t, server, "tools/list", nil)
	require.Nil(t, envelope.Error)

	var result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(envelope.Result, &result))

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{mcp.ToolMigrate, mcp.ToolMigrationStatus, mcp.ToolSeed}, names)
}

func TestHandleMCP_CallTool(t *testing.T) {
	server := setupTestServer(t)

	envelope := callMCP(t, server, "tools/call", map[string]interface{}{
		"name":      mcp.ToolMigrate,
		"arguments": map[string]string{"mode": "run"},
	})
	require.Nil(t, envelope.Error)

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(envelope.Result, &result))
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.Contains(t, result.Content[0].Text, `"applied":5`)

	envelope = callMCP(t, server, "tools/call", map[string]interface{}{"name": "drop_everything"})
	require.NotNil(t, envelope.Error)
	assert.Equal(t, InternalError, envelope.Error.Code)
}

func TestHandleMCP_Resources(t *testing.T) {
	server := setupTestServer(t)

	envelope := callMCP(t, server, "resources/list", nil)
	require.Nil(t, envelope.Error)
	assert.Contains(t, string(envelope.Result), mcp.ResourceHistory)

	callMCP(t, server, "tools/call", map[string]interface{}{"name": mcp.ToolMigrate})

	envelope = callMCP(t, server, "resources/read", map[string]string{"uri": mcp.ResourceHistory})
	require.Nil(t, envelope.Error)
	assert.Contains(t, string(envelope.Result), "001_create_users_table")

	envelope = callMCP(t, server, "resources/read", map[string]string{"uri": "migrations://nowhere"})
	require.NotNil(t, envelope.Error)
}

func TestHandleMCP_ProtocolErrors(t *testing.T) {
	server := setupTestServer(t)

	envelope := callMCP(t, server, "prompts/list", nil)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, MethodNotFound, envelope.Error.Code)

	rec := doRequest(server, http.MethodPost, "/api/v1/mcp", map[string]interface{}{
		"jsonrpc": "1.0",
		"method":  "tools/list",
		"id":      2,
	}, apiKeyHeader())
	require.Equal(t, http.StatusOK, rec.Code)

	var envelopeV1 rpcEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelopeV1))
	require.NotNil(t, envelopeV1.Error)
	assert.Equal(t, InvalidRequest, envelopeV1.Error.Code)
}
