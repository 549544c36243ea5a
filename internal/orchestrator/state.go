// Package orchestrator implements the bounded reason-act loop: tier/prompt
// selection, JSON-envelope turns against an LlmClient, tool dispatch
// against a GraphToolExecutor, budget enforcement, and assembly of the
// final AgenticResult.
//
// Built on the generic core.Workflow/core.Node/core.Flow machinery
// (internal/core), wiring three nodes into one graph:
//
//	GenerateNode --tool--> DispatchNode --default--> GenerateNode
//	GenerateNode --answer--> FinalizeNode --end
//	DispatchNode --finalize (budget exhausted)--> FinalizeNode
package orchestrator

import (
	"context"
	"time"

	"github.com/codegraph-ai/agentic-core/internal/budget"
	"github.com/codegraph-ai/agentic-core/internal/debugjournal"
	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/graphtool"
	"github.com/codegraph-ai/agentic-core/internal/llmclient"
	"github.com/codegraph-ai/agentic-core/internal/progress"
)

// state is the shared state threaded through GenerateNode/DispatchNode/
// FinalizeNode for one execute() call. Not goroutine-safe: the Flow
// guarantees single-goroutine access within one invocation.
type state struct {
	// ctx is stable for the lifetime of one Execute call. Prep/Post in the
	// core.BaseNode contract don't receive a context, so it's threaded
	// through state instead; Exec still takes ctx directly from the Flow.
	ctx context.Context

	// Invocation inputs, fixed for the lifetime of this state.
	query        string
	analysisType domain.AnalysisType
	tier         domain.ContextTier
	tierBudget   domain.TierBudget
	systemPrompt string
	maxSteps     int

	// Dependencies.
	llm      llmclient.Client
	executor graphtool.Executor
	monitor  *budget.Monitor
	sink     progress.Sink
	journal  *debugjournal.Journal

	// Conversation + step accumulation.
	history []domain.Message
	steps   []domain.AgentStep
	stepIdx int

	// Transient: written by GenerateNode.Post, read by DispatchNode or
	// FinalizeNode depending on routing.
	pendingToolCall  *domain.ToolCallSpec
	pendingReasoning string
	pendingFinal     bool
	pendingAnswer    string
	pendingTokensIn  int
	pendingTokensOut int
	pendingLatencyMs int64

	// carryTokensIn/Out accumulate tokens spent on attempts (e.g. a
	// malformed envelope that gets retried) that haven't yet been folded
	// into a completed AgentStep. Monitor.RecordTokens is only ever called
	// at the point a step is appended, using pendingTokensIn/Out, so the
	// monitor's running total stays exactly equal to the sum over recorded
	// steps — nothing is recorded twice or lost to a retry.
	carryTokensIn  int
	carryTokensOut int

	// Set when a termination condition is reached outside the normal
	// Parsed->Final transition (budget exhaustion, parse failure,
	// cancellation) so FinalizeNode knows it must force a summary.
	forcedReason domain.TerminationReason
	forced       bool

	parseFailures int
	toolCallStats map[domain.ToolName]int

	// Final outcome, written by FinalizeNode.Post.
	finalAnswer           string
	completedSuccessfully bool
	terminationReason     domain.TerminationReason

	startedAt time.Time
}

func newState(ctx context.Context, query string, analysisType domain.AnalysisType, tier domain.ContextTier, tierBudget domain.TierBudget, systemPrompt string, maxSteps int) *state {
	return &state{
		ctx:           ctx,
		query:         query,
		analysisType:  analysisType,
		tier:          tier,
		tierBudget:    tierBudget,
		systemPrompt:  systemPrompt,
		maxSteps:      maxSteps,
		history:       []domain.Message{{Role: domain.RoleUser, Content: query}},
		toolCallStats: make(map[domain.ToolName]int),
		startedAt:     time.Now(),
	}
}

// appendStep records a completed AgentStep and advances the step index.
func (s *state) appendStep(step domain.AgentStep) {
	step.Index = s.stepIdx
	s.stepIdx++
	s.steps = append(s.steps, step)
}

// drainCarryToPending moves accumulated-but-unattributed token counts (from
// retried parse-failure attempts) onto pendingTokensIn/Out so whichever
// node closes out this round attributes them to its AgentStep exactly
// once. monitor.RecordTokens is only ever called at that closing point
// (dispatchNode.Post / finalizeNode.Post), never here — see
// carryTokensIn's doc comment.
func (s *state) drainCarryToPending() {
	s.pendingTokensIn = s.carryTokensIn
	s.pendingTokensOut = s.carryTokensOut
	s.carryTokensIn, s.carryTokensOut = 0, 0
}
