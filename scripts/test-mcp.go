package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// MCP JSON-RPC structures
type MCPRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type MCPResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *MCPError       `json:"error,omitempty"`
}

type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ToolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type toolResult struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func main() {
	binaryPath := flag.String("binary", "../ironforge", "Path to the ironforge MCP binary")
	configPath := flag.String("config", "", "Configuration file passed to the binary")
	flag.Parse()

	fmt.Println("MCP server smoke test")
	fmt.Println(strings.Repeat("-", 60))

	if _, err := os.Stat(*binaryPath); os.IsNotExist(err) {
		fmt.Println("Binary not found. Run 'make build' first.")
		os.Exit(1)
	}

	tester := &MCPTester{binary: *binaryPath, config: *configPath}
	if err := tester.RunTests(); err != nil {
		fmt.Printf("Test failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("All tests passed")
}

type MCPTester struct {
	binary  string
	config  string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	nextID  int
}

func (t *MCPTester) RunTests() error {
	fmt.Println("Starting MCP server...")
	if err := t.startServer(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer t.cleanup()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"Initialize connection", t.testInitialize},
		{"List tools", t.testListTools},
		{"Run migrations", t.testMigrate},
		{"Migration status", t.testStatus},
	}

	for _, test := range tests {
		fmt.Printf("%s... ", test.name)
		if err := test.fn(); err != nil {
			fmt.Println("FAILED")
			return fmt.Errorf("test '%s' failed: %w", test.name, err)
		}
		fmt.Println("PASSED")
	}

	return nil
}

func (t *MCPTester) startServer() error {
	args := []string{}
	if t.config != "" {
		args = append(args, "-config", t.config)
	}
	t.cmd = exec.Command(t.binary, args...)
	t.cmd.Stderr = io.Discard

	stdin, err := t.cmd.StdinPipe()
	if err != nil {
		return err
	}
	t.stdin = stdin

	stdout, err := t.cmd.StdoutPipe()
	if err != nil {
		return err
	}
	t.scanner = bufio.NewScanner(stdout)
	t.scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	return t.cmd.Start()
}

func (t *MCPTester) cleanup() {
	if t.stdin != nil {
		t.stdin.Close()
	}
	if t.cmd != nil && t.cmd.Process != nil {
		t.cmd.Process.Kill()
		t.cmd.Wait()
	}
}

func (t *MCPTester) sendRequest(method string, params interface{}) (*MCPResponse, error) {
	t.nextID++
	reqBytes, err := json.Marshal(MCPRequest{JSONRPC: "2.0", ID: t.nextID, Method: method, Params: params})
	if err != nil {
		return nil, err
	}
	if _, err := t.stdin.Write(append(reqBytes, '\n')); err != nil {
		return nil, err
	}

	lines := make(chan string, 1)
	go func() {
		if t.scanner.Scan() {
			lines <- t.scanner.Text()
		}
		close(lines)
	}()

	select {
	case line, ok := <-lines:
		if !ok {
			return nil, fmt.Errorf("server closed stdout: %v", t.scanner.Err())
		}
		var resp MCPResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse response %q: %w", line, err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("%s failed: %s", method, resp.Error.Message)
		}
		return &resp, nil
	case <-time.After(10 * time.Second):
		return nil, fmt.Errorf("timeout waiting for response")
	}
}

func (t *MCPTester) callTool(name string, args map[string]interface{}) (map[string]interface{}, error) {
	resp, err := t.sendRequest("tools/call", ToolCallParams{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}

	var result toolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, err
	}
	if len(result.Content) == 0 {
		return nil, fmt.Errorf("no content in %s response", name)
	}

	var body map[string]interface{}
	if err := json.Unmarshal([]byte(result.Content[0].Text), &body); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", name, err)
	}
	if result.IsError {
		return body, fmt.Errorf("%s returned an error: %v", name, body["error"])
	}
	return body, nil
}

func (t *MCPTester) testInitialize() error {
	_, err := t.sendRequest("initialize", map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo":      map[string]string{"name": "smoke-test", "version": "1.0.0"},
	})
	return err
}

func (t *MCPTester) testListTools() error {
	resp, err := t.sendRequest("tools/list", map[string]interface{}{})
	if err != nil {
		return err
	}

	var result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return err
	}

	found := make(map[string]bool)
	for _, tool := range result.Tools {
		found[tool.Name] = true
	}
	for _, expected := range []string{"migrate", "migration_status", "seed"} {
		if !found[expected] {
			return fmt.Errorf("missing tool: %s", expected)
		}
	}
	return nil
}

func (t *MCPTester) testMigrate() error {
	body, err := t.callTool("migrate", map[string]interface{}{"mode": "run"})
	if err != nil {
		return err
	}
	if success, _ := body["success"].(bool); !success {
		return fmt.Errorf("migrate did not succeed: %v", body["error"])
	}
	return nil
}

func (t *MCPTester) testStatus() error {
	body, err := t.callTool("migration_status", nil)
	if err != nil {
		return err
	}

	data, _ := body["data"].(map[string]interface{})
	pending, _ := data["pending"].([]interface{})
	if len(pending) != 0 {
		return fmt.Errorf("expected no pending migrations after run, got %v", pending)
	}
	return nil
}
