package orchestrator

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/codegraph-ai/agentic-core/internal/core"
	"github.com/codegraph-ai/agentic-core/internal/debugjournal"
	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/llmclient"
	"github.com/codegraph-ai/agentic-core/internal/parser"
	"github.com/codegraph-ai/agentic-core/internal/progress"
)

// generateTimeoutMs bounds a single LLM turn. The adapter also honors
// options.TimeoutMs via its own context.WithTimeout.
const generateTimeoutMs = 30_000

// maxParseRetries is how many times a malformed envelope gets a terse
// clarification turn before the loop gives up and forces finalization with
// ParseFailure.
const maxParseRetries = 1

// generatePrep is the single work item GenerateNode.Exec operates on. The
// core.BaseNode contract doesn't thread ctx or *state into Exec, so every
// dependency Exec needs travels through this struct.
type generatePrep struct {
	llm     llmclient.Client
	system  string
	history []domain.Message
	options llmclient.Options
}

// generateExec is GenerateNode.Exec's result: either a parsed envelope, a
// parse failure, or (via ExecFallback) an upstream failure after retries.
type generateExec struct {
	result      llmclient.Result
	envelope    domain.Envelope
	parseErr    error
	upstreamErr error
	latencyMs   int64
}

// generateNode is the DecideNode analog: assembles [system, history...],
// calls LlmClient.Generate, parses the JSON envelope, and routes on
// is_final / tool_call / parse outcome.
type generateNode struct{}

func newGenerateNode() *generateNode { return &generateNode{} }

func (n *generateNode) Prep(s *state) []generatePrep {
	if d := checkAll(s); d.Stop {
		s.drainCarryToPending()
		s.forced = true
		s.forcedReason = d.Reason
		return nil
	}

	progress.SafeEmit(s.sink, progress.Event{Kind: progress.StepStarted, Index: s.stepIdx})
	s.journal.Write(debugjournal.ReasoningStep, map[string]any{"index": s.stepIdx, "phase": "generate_start"})

	return []generatePrep{{
		llm:     s.llm,
		system:  s.systemPrompt,
		history: append([]domain.Message(nil), s.history...),
		options: llmclient.Options{
			MaxOutputTokens: s.tierBudget.SafeOutputTokens,
			Temperature:     0.2,
			TimeoutMs:       generateTimeoutMs,
		},
	}}
}

func (n *generateNode) Exec(ctx context.Context, prep generatePrep) (generateExec, error) {
	start := time.Now()
	res, err := prep.llm.Generate(ctx, prep.system, prep.history, prep.options)
	if err != nil {
		return generateExec{}, err
	}

	env, perr := parser.Parse(res.Text)
	return generateExec{
		result:    res,
		envelope:  env,
		parseErr:  perr,
		latencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// ExecFallback runs once retries (per the Node's maxRetries) are exhausted:
// an LLM-adapter failure becomes an UpstreamError termination, never a
// panic or a propagated Go error.
func (n *generateNode) ExecFallback(err error) generateExec {
	return generateExec{upstreamErr: err}
}

func (n *generateNode) Post(s *state, prepRes []generatePrep, execResults ...generateExec) core.Action {
	if len(prepRes) == 0 {
		// Prep already decided termination (cancelled, deadline, or a
		// budget exhausted before this turn could even start).
		return core.ActionFinalize
	}

	exec := execResults[0]

	if exec.upstreamErr != nil {
		log.Printf("[Orchestrator] generate: upstream failure after retries: %v", exec.upstreamErr)
		s.drainCarryToPending()
		s.forced = true
		s.forcedReason = domain.UpstreamError
		if d := checkAll(s); d.Stop && (d.Reason == domain.Cancelled || d.Reason == domain.DeadlineExceeded) {
			s.forcedReason = d.Reason
		}
		return core.ActionFinalize
	}

	s.carryTokensIn += exec.result.TokensIn
	s.carryTokensOut += exec.result.TokensOut

	if exec.parseErr != nil {
		s.parseFailures++
		s.journal.Write(debugjournal.ReasoningStep, map[string]any{
			"index": s.stepIdx, "phase": "parse_failure", "error": exec.parseErr.Error(),
		})
		if s.parseFailures > maxParseRetries {
			s.drainCarryToPending()
			s.forced = true
			s.forcedReason = domain.ParseFailure
			return core.ActionFinalize
		}

		s.history = append(s.history,
			domain.Message{Role: domain.RoleAssistant, Content: exec.result.Text},
			domain.Message{Role: domain.RoleUser, Content: clarificationNudge},
		)
		return core.ActionDefault
	}

	s.parseFailures = 0
	s.pendingReasoning = exec.envelope.Reasoning
	s.pendingLatencyMs = exec.latencyMs
	s.drainCarryToPending()
	s.history = append(s.history, domain.Message{Role: domain.RoleAssistant, Content: exec.result.Text})

	progress.SafeEmit(s.sink, progress.Event{
		Kind: progress.StepFinished, Index: s.stepIdx,
		LatencyMs: exec.latencyMs, Tokens: exec.result.TokensIn + exec.result.TokensOut,
	})

	if exec.envelope.IsFinal {
		s.pendingFinal = true
		s.pendingAnswer = strings.TrimSpace(strings.TrimPrefix(exec.envelope.Reasoning, domain.FinalAnswerSentinel))
		return core.ActionAnswer
	}

	s.pendingToolCall = exec.envelope.ToolCall
	return core.ActionTool
}

// clarificationNudge is injected once, as a user turn, after a malformed
// envelope — a single bounded retry before the loop gives up.
const clarificationNudge = "Your last reply could not be parsed as the required JSON envelope. " +
	"Reply with exactly one JSON object: {\"reasoning\": string, \"tool_call\": object|null, \"is_final\": bool}, nothing else."
