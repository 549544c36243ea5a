// Package graphtool declares the GraphToolExecutor contract and an
// MCP-backed implementation that dispatches the six canonical graph tools
// to an upstream graph-service MCP server.
package graphtool

import (
	"context"

	"github.com/codegraph-ai/agentic-core/internal/domain"
)

// Options configures a single dispatch.
type Options struct {
	TimeoutMs int
	ResultCap int // per-tier result cap; 0 = no cap
}

// Executor is the graph tool executor contract. It is responsible for
// parameter-name fidelity to the underlying graph schema — the orchestrator
// passes through exactly what toolschema declares; renaming parameters to
// match a backend signature is a defect, not a feature.
type Executor interface {
	Dispatch(ctx context.Context, call domain.ToolCallSpec, options Options) domain.ToolResult
}
