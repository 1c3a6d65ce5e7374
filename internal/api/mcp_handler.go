package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	mcpTypes "github.com/mark3labs/mcp-go/mcp"

	"github.com/ksred/ironforge/internal/mcp"
)

// MCPRequest represents a JSON-RPC 2.0 request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id"`
}

// MCPResponse represents a JSON-RPC 2.0 response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// MCPError represents a JSON-RPC 2.0 error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Standard JSON-RPC 2.0 error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

func rpcError(id interface{}, code int, message string, data interface{}) MCPResponse {
	return MCPResponse{
		JSONRPC: "2.0",
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
}

// HandleMCP processes MCP protocol requests over HTTP
//
// @Summary MCP over HTTP
// @Description JSON-RPC 2.0 endpoint exposing the MCP tools and resources
// @Tags mcp
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body MCPRequest true "JSON-RPC request"
// @Success 200 {object} MCPResponse
// @Router /mcp [post]
func (s *Server) HandleMCP(c *gin.Context) {
	var req MCPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, rpcError(nil, ParseError, "Parse error", err.Error()))
		return
	}

	if req.JSONRPC != "2.0" {
		c.JSON(http.StatusOK, rpcError(req.ID, InvalidRequest, "Invalid Request", "jsonrpc must be 2.0"))
		return
	}

	var result interface{}
	var err error

	switch req.Method {
	case "initialize":
		result, err = s.handleMCPInitialize(req.Params)
	case "tools/list":
		result = map[string]interface{}{"tools": mcp.Tools()}
	case "tools/call":
		result, err = s.handleMCPCallTool(c.Request.Context(), req.Params)
	case "resources/list":
		result = map[string]interface{}{"resources": mcp.Resources()}
	case "resources/read":
		result, err = s.handleMCPReadResource(c.Request.Context(), req.Params)
	default:
		c.JSON(http.StatusOK, rpcError(req.ID, MethodNotFound, "Method not found", fmt.Sprintf("Unknown method: %s", req.Method)))
		return
	}

	if err != nil {
		s.logger.Error().Err(err).Str("method", req.Method).Msg("MCP method error")
		c.JSON(http.StatusOK, rpcError(req.ID, InternalError, "Internal error", err.Error()))
		return
	}

	c.JSON(http.StatusOK, MCPResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	})
}

func (s *Server) handleMCPInitialize(params json.RawMessage) (interface{}, error) {
	var initParams struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}

	if len(params) > 0 {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, fmt.Errorf("invalid initialize params: %w", err)
		}
	}

	s.logger.Debug().
		Str("client", initParams.ClientInfo.Name).
		Str("protocol_version", initParams.ProtocolVersion).
		Msg("MCP client initialized")

	return map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"serverInfo": map[string]interface{}{
			"name":    "ironforge",
			"version": "1.0.0",
		},
		"capabilities": map[string]interface{}{
			"tools":     map[string]interface{}{},
			"resources": map[string]interface{}{},
		},
	}, nil
}

func (s *Server) handleMCPCallTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var callParams struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, fmt.Errorf("invalid tool call params: %w", err)
	}

	response, err := s.mcp.CallTool(ctx, callParams.Name, callParams.Arguments)
	if err != nil {
		return nil, err
	}

	resultJSON, err := response.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return mcpTypes.CallToolResult{
		Content: []mcpTypes.Content{
			mcpTypes.TextContent{
				Type: "text",
				Text: string(resultJSON),
			},
		},
		IsError: !response.Success,
	}, nil
}

func (s *Server) handleMCPReadResource(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var readParams struct {
		URI string `json:"uri"`
	}

	if err := json.Unmarshal(params, &readParams); err != nil {
		return nil, fmt.Errorf("invalid resource read params: %w", err)
	}

	body, err := s.mcp.ReadResource(ctx, readParams.URI)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"contents": []mcpTypes.ResourceContents{
			mcpTypes.TextResourceContents{
				URI:      readParams.URI,
				MIMEType: "application/json",
				Text:     body,
			},
		},
	}, nil
}
