package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/codegraph-ai/agentic-core/internal/budget"
	"github.com/codegraph-ai/agentic-core/internal/core"
	"github.com/codegraph-ai/agentic-core/internal/debugjournal"
	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/graphtool"
	"github.com/codegraph-ai/agentic-core/internal/llmclient"
	"github.com/codegraph-ai/agentic-core/internal/progress"
	"github.com/codegraph-ai/agentic-core/internal/promptreg"
	"github.com/codegraph-ai/agentic-core/internal/tier"
)

// generateMaxRetries gives one retry to an LLM-adapter failure (e.g. a
// timeout) before it becomes UpstreamError.
const generateMaxRetries = 1

// defaultTokenBudgetSteps sizes the default cumulative token budget as a
// multiple of the per-turn safe-output ceiling and the step budget, absent
// an explicit WithTokenBudget override. Generous enough that a well-behaved
// run finalizes on its own step budget, not the token one.
const defaultTokenBudgetSteps = 2

// ErrEmptyQuery is returned when Execute is called with an empty query —
// rejected before any LLM call.
var ErrEmptyQuery = errors.New("orchestrator: query must not be empty")

// ErrInvalidAnalysisType is returned for an AnalysisType outside the seven
// canonical values.
var ErrInvalidAnalysisType = errors.New("orchestrator: invalid analysis type")

// Orchestrator wires an LlmClient and a GraphToolExecutor into the bounded
// reason-act loop. One Orchestrator may serve many concurrent Execute
// calls: all mutable per-invocation state lives in the state value created
// fresh inside Execute, never on the Orchestrator itself.
type Orchestrator struct {
	llm           llmclient.Client
	executor      graphtool.Executor
	contextWindow int
}

// New builds an Orchestrator. contextWindow is the caller-configured LLM
// context window in tokens; CODEGRAPH_CONTEXT_WINDOW overrides it per
// invocation.
func New(llm llmclient.Client, executor graphtool.Executor, contextWindow int) *Orchestrator {
	return &Orchestrator{llm: llm, executor: executor, contextWindow: contextWindow}
}

// execConfig collects the optional per-invocation knobs: deadline, progress
// sink, debug override, token budget. Cancellation is carried by ctx itself
// rather than a separate option, the idiomatic Go shape for it.
type execConfig struct {
	deadline    time.Time
	sink        progress.Sink
	debugDir    string
	forceDebug  bool
	tokenBudget int
}

// Option configures one Execute call.
type Option func(*execConfig)

// WithDeadline sets an optional whole-invocation wall-clock deadline.
func WithDeadline(deadline time.Time) Option {
	return func(c *execConfig) { c.deadline = deadline }
}

// WithProgressSink attaches a best-effort progress.Sink for this call.
func WithProgressSink(sink progress.Sink) Option {
	return func(c *execConfig) { c.sink = sink }
}

// WithDebug forces the JSONL debug journal on for this call (writing under
// dir, or os.TempDir() if empty) regardless of CODEGRAPH_DEBUG.
func WithDebug(dir string) Option {
	return func(c *execConfig) { c.forceDebug = true; c.debugDir = dir }
}

// WithTokenBudget overrides the cumulative tokens_in+tokens_out budget.
// A negative value disables the token budget entirely; 0 keeps the default.
func WithTokenBudget(tokens int) Option {
	return func(c *execConfig) { c.tokenBudget = tokens }
}

// Execute runs one bounded reason-act loop to answer query under
// analysisType. Only misuse (empty query, invalid analysisType) returns an
// error; every recoverable termination — budget exhaustion, cancellation,
// deadline, parse failure, upstream error — returns a populated
// AgenticResult with CompletedSuccessfully=false and the matching
// TerminationReason instead.
func (o *Orchestrator) Execute(ctx context.Context, query string, analysisType domain.AnalysisType, opts ...Option) (domain.AgenticResult, error) {
	if query == "" {
		return domain.AgenticResult{}, ErrEmptyQuery
	}
	if !analysisType.Valid() {
		return domain.AgenticResult{}, ErrInvalidAnalysisType
	}

	cfg := execConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctxTier, tierBudget := tier.ClassifyEnv(o.contextWindow)
	maxSteps := tier.StepBudget(tierBudget, analysisType)
	systemPrompt := promptreg.PromptFor(analysisType, ctxTier)

	tokenBudget := cfg.tokenBudget
	if tokenBudget == 0 {
		tokenBudget = tierBudget.SafeOutputTokens * maxSteps * defaultTokenBudgetSteps
	}

	var journal *debugjournal.Journal
	if cfg.forceDebug {
		journal = debugjournal.Open(cfg.debugDir)
	} else {
		journal = debugjournal.OpenFromEnv()
	}
	defer journal.Close()

	sink := cfg.sink
	if sink == nil {
		sink = progress.Noop
	}

	st := newState(ctx, query, analysisType, ctxTier, tierBudget, systemPrompt, maxSteps)
	st.llm = o.llm
	st.executor = o.executor
	st.monitor = budget.New(maxSteps, tokenBudget, cfg.deadline)
	st.sink = sink
	st.journal = journal

	journal.Write(debugjournal.AgentStart, map[string]any{
		"analysis_type": analysisType, "tier": ctxTier, "max_steps": maxSteps, "query": query,
	})

	flow := buildFlow()
	flow.Run(ctx, st)

	// The Flow stops without reaching FinalizeNode when ctx is cancelled
	// between two non-terminal transitions; finalize here so the result
	// still carries its termination reason and an answer.
	if st.terminationReason == "" {
		if d := checkAll(st); d.Stop {
			st.forced, st.forcedReason = true, d.Reason
			core.NewNode[state, finalizePrep, finalizeExec](newFinalizeNode(), 0).Run(ctx, st)
		}
	}

	return domain.AgenticResult{
		AnalysisType:          analysisType,
		Tier:                  ctxTier,
		Query:                 query,
		FinalAnswer:           st.finalAnswer,
		Steps:                 st.steps,
		TotalSteps:            len(st.steps),
		DurationMs:            time.Since(st.startedAt).Milliseconds(),
		TotalTokens:           st.monitor.TokensTotal(),
		CompletedSuccessfully: st.completedSuccessfully,
		TerminationReason:     st.terminationReason,
		ToolCallStats:         st.toolCallStats,
	}, nil
}

// buildFlow wires GenerateNode/DispatchNode/FinalizeNode per the diagram in
// state.go's package doc. A fresh flow per call keeps wiring stateless and
// cheap; only *state carries per-invocation mutable data.
func buildFlow() *core.Flow[state] {
	gen := core.NewNode[state, generatePrep, generateExec](newGenerateNode(), generateMaxRetries)
	disp := core.NewNode[state, dispatchPrep, domain.ToolResult](newDispatchNode(), 0)
	fin := core.NewNode[state, finalizePrep, finalizeExec](newFinalizeNode(), 0)

	gen.AddSuccessor(gen, core.ActionDefault)
	gen.AddSuccessor(disp, core.ActionTool)
	gen.AddSuccessor(fin, core.ActionAnswer)
	gen.AddSuccessor(fin, core.ActionFinalize)

	disp.AddSuccessor(gen, core.ActionDefault)
	disp.AddSuccessor(fin, core.ActionFinalize)

	return core.NewFlow[state](gen)
}
