// Package llmclient declares the single-surface LLM adapter contract the
// orchestrator depends on: one generate call, cancellation and timeout
// aware, streaming-or-batch agnostic — the core never inspects
// provider-specific fields.
package llmclient

import (
	"context"

	"github.com/codegraph-ai/agentic-core/internal/domain"
)

// Options configures a single generate call.
type Options struct {
	MaxOutputTokens int
	Temperature     float32
	TimeoutMs       int
}

// Result is the outcome of one generate call.
type Result struct {
	Text      string
	TokensIn  int
	TokensOut int
}

// Client is the LLM adapter contract. The core does not care whether the
// underlying provider streams or batches; a streaming implementation must
// aggregate internally before returning.
type Client interface {
	// Generate sends system + history to the model and returns its
	// complete text response plus token accounting. ctx carries both
	// cancellation and the per-turn timeout (options.TimeoutMs is a hint
	// the adapter may also apply as context.WithTimeout internally).
	Generate(ctx context.Context, system string, history []domain.Message, options Options) (Result, error)
}
