package graphtool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/util"
	sdk_client "github.com/mark3labs/mcp-go/client"
	sdk_mcp "github.com/mark3labs/mcp-go/mcp"
)

// scalarResultCharCap bounds a single scalar/raw-text observation so one
// verbose tool response can't blow the next generate turn's prompt budget.
const scalarResultCharCap = 4000

// defaultDispatchTimeout is the per-tool dispatch timeout when Options.TimeoutMs
// is unset.
const defaultDispatchTimeout = 5 * time.Second

// ServerConfig describes the upstream graph-service MCP server connection,
// narrowed to what a single graph backend needs (one server, not a named
// map of many).
type ServerConfig struct {
	Transport string   // "stdio" | "sse"
	Command   string   // stdio: executable path
	Args      []string // stdio: command arguments
	URL       string   // sse: base URL
	Env       []string // stdio: extra environment variables
}

// MCPExecutor implements Executor by mapping each ToolCallSpec to an MCP
// CallTool request against a configured graph-service MCP server: the graph
// backend is itself exposed as an MCP tool surface, so dispatch is just
// Connect once, then CallTool-with-timeout per call.
type MCPExecutor struct {
	mu    sync.RWMutex
	cfg   ServerConfig
	inner sdk_client.MCPClient
}

// NewMCPExecutor creates an uninitialised executor. Call Connect before
// Dispatch.
func NewMCPExecutor(cfg ServerConfig) *MCPExecutor {
	return &MCPExecutor{cfg: cfg}
}

// Connect establishes the transport connection and performs the MCP
// initialize handshake.
func (e *MCPExecutor) Connect(ctx context.Context) error {
	var inner sdk_client.MCPClient

	switch e.cfg.Transport {
	case "stdio":
		cli, err := sdk_client.NewStdioMCPClient(e.cfg.Command, e.cfg.Env, e.cfg.Args...)
		if err != nil {
			return fmt.Errorf("graphtool: start stdio graph server: %w", err)
		}
		inner = cli
	case "sse":
		cli, err := sdk_client.NewSSEMCPClient(e.cfg.URL)
		if err != nil {
			return fmt.Errorf("graphtool: create SSE graph client: %w", err)
		}
		if err := cli.Start(ctx); err != nil {
			return fmt.Errorf("graphtool: start SSE graph client: %w", err)
		}
		inner = cli
	default:
		return fmt.Errorf("graphtool: unknown transport %q", e.cfg.Transport)
	}

	_, err := inner.Initialize(ctx, sdk_mcp.InitializeRequest{
		Params: sdk_mcp.InitializeParams{
			ProtocolVersion: sdk_mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: sdk_mcp.Implementation{
				Name:    "codegraph-agentic-core",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		_ = inner.Close()
		return fmt.Errorf("graphtool: initialize graph server: %w", err)
	}

	e.mu.Lock()
	e.inner = inner
	e.mu.Unlock()
	return nil
}

// Close terminates the connection to the graph-service MCP server.
func (e *MCPExecutor) Close() error {
	e.mu.Lock()
	inner := e.inner
	e.inner = nil
	e.mu.Unlock()
	if inner == nil {
		return nil
	}
	return inner.Close()
}

// Dispatch implements Executor. Backend errors — infrastructure failures,
// missing connection, or a server-reported tool error — all become
// ToolResult.Error rather than a propagated Go error.
func (e *MCPExecutor) Dispatch(ctx context.Context, call domain.ToolCallSpec, options Options) domain.ToolResult {
	e.mu.RLock()
	inner := e.inner
	e.mu.RUnlock()

	if inner == nil {
		return errorResult(call.Name, "graphtool: not connected")
	}

	timeout := defaultDispatchTimeout
	if options.TimeoutMs > 0 {
		timeout = time.Duration(options.TimeoutMs) * time.Millisecond
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := sdk_mcp.CallToolRequest{}
	req.Params.Name = string(call.Name)
	req.Params.Arguments = call.Params

	result, err := inner.CallTool(callCtx, req)
	if err != nil {
		return errorResult(call.Name, err.Error())
	}

	var text string
	for _, content := range result.Content {
		if tc, ok := content.(sdk_mcp.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}
	if result.IsError {
		return errorResult(call.Name, text)
	}

	return normalize(call.Name, text, options.ResultCap)
}

func errorResult(name domain.ToolName, msg string) domain.ToolResult {
	return domain.ToolResult{
		Tool:    name,
		Result:  map[string]any{"error": msg},
		Summary: domain.ResultSummary{Type: "object"},
		Error:   msg,
	}
}

// normalize parses the backend's raw text response into the canonical
// ToolResult shape: array results get truncated to resultCap (with
// Truncated=true if rows were elided) and a single sample element;
// object/scalar results get a type-only summary.
func normalize(name domain.ToolName, rawText string, resultCap int) domain.ToolResult {
	var parsed any
	if err := json.Unmarshal([]byte(rawText), &parsed); err != nil {
		// Not JSON — treat the raw text itself as a scalar result.
		return domain.ToolResult{
			Tool:    name,
			Result:  util.TruncateRunes(rawText, scalarResultCharCap),
			Summary: domain.ResultSummary{Type: "scalar"},
		}
	}

	switch v := parsed.(type) {
	case []any:
		count := len(v)
		truncated := false
		result := v
		if resultCap > 0 && count > resultCap {
			result = v[:resultCap]
			truncated = true
		}
		summaryCount := len(result)
		summary := domain.ResultSummary{Type: "array", Count: &summaryCount}
		if summaryCount > 0 {
			summary.Sample = result[0]
		}
		return domain.ToolResult{
			Tool:      name,
			Result:    result,
			Truncated: truncated,
			Summary:   summary,
		}

	case map[string]any:
		return domain.ToolResult{
			Tool:    name,
			Result:  v,
			Summary: domain.ResultSummary{Type: "object"},
		}

	default:
		result := any(v)
		if s, ok := v.(string); ok {
			result = util.TruncateRunes(s, scalarResultCharCap)
		}
		return domain.ToolResult{
			Tool:    name,
			Result:  result,
			Summary: domain.ResultSummary{Type: "scalar"},
		}
	}
}
