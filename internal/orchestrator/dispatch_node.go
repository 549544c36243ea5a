package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/codegraph-ai/agentic-core/internal/core"
	"github.com/codegraph-ai/agentic-core/internal/debugjournal"
	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/graphtool"
	"github.com/codegraph-ai/agentic-core/internal/progress"
	"github.com/codegraph-ai/agentic-core/internal/tier"
	"github.com/codegraph-ai/agentic-core/internal/toolschema"
)

// dispatchTimeoutMs bounds a single graph-tool dispatch at 5s. Every
// dispatch uses it; Execute has no option to change it.
const dispatchTimeoutMs = 5_000

// dispatchPrep carries the call as proposed by the model plus the outcome
// of parameter validation — a rejected call still produces a ToolResult
// observation rather than a Go error, so validation happens in Prep and the
// verdict travels into Exec.
type dispatchPrep struct {
	call        domain.ToolCallSpec
	validated   map[string]any
	validateErr error
	executor    graphtool.Executor
	options     graphtool.Options
}

// dispatchNode is the ToolNode analog: validates the pending tool call,
// dispatches it through the GraphToolExecutor, and folds the observation
// back into history before routing back to GenerateNode (or to forced
// finalization if the budget is now exhausted).
type dispatchNode struct{}

func newDispatchNode() *dispatchNode { return &dispatchNode{} }

func (n *dispatchNode) Prep(s *state) []dispatchPrep {
	if d := checkAll(s); d.Stop {
		s.forced = true
		s.forcedReason = d.Reason
		return nil
	}

	call := *s.pendingToolCall
	validated, err := toolschema.Validate(call.Name, call.Params)

	progress.SafeEmit(s.sink, progress.Event{
		Kind: progress.ToolStarted, Index: s.stepIdx, ToolName: call.Name, Params: call.Params,
	})
	s.journal.Write(debugjournal.ToolCallStart, map[string]any{
		"index": s.stepIdx, "tool": call.Name, "params": call.Params,
	})

	return []dispatchPrep{{
		call:        call,
		validated:   validated,
		validateErr: err,
		executor:    s.executor,
		options: graphtool.Options{
			TimeoutMs: dispatchTimeoutMs,
			ResultCap: tier.ResultCap(s.tierBudget, true),
		},
	}}
}

func (n *dispatchNode) Exec(ctx context.Context, prep dispatchPrep) (domain.ToolResult, error) {
	if prep.validateErr != nil {
		return rejectedResult(prep.call.Name, prep.validateErr), nil
	}
	call := domain.ToolCallSpec{Name: prep.call.Name, Params: prep.validated}
	return prep.executor.Dispatch(ctx, call, prep.options), nil
}

// ExecFallback only fires if ctx is already cancelled when the Node would
// call Exec (the dispatch node runs with zero retries) — the
// Executor contract itself never returns a Go error, it always normalizes
// to a ToolResult.
func (n *dispatchNode) ExecFallback(err error) domain.ToolResult {
	return domain.ToolResult{
		Result:  map[string]any{"error": err.Error()},
		Summary: domain.ResultSummary{Type: "object"},
		Error:   err.Error(),
	}
}

func (n *dispatchNode) Post(s *state, prepRes []dispatchPrep, execResults ...domain.ToolResult) core.Action {
	if len(prepRes) == 0 {
		return core.ActionFinalize
	}

	prep := prepRes[0]
	observation := execResults[0]

	s.monitor.RecordStep()
	s.monitor.RecordTokens(s.pendingTokensIn, s.pendingTokensOut)
	s.monitor.RecordToolCall(prep.call)
	s.toolCallStats[prep.call.Name]++

	s.appendStep(domain.AgentStep{
		Phase:       domain.PhaseTool,
		Reasoning:   s.pendingReasoning,
		ToolCall:    &prep.call,
		Observation: &observation,
		TokensIn:    s.pendingTokensIn,
		TokensOut:   s.pendingTokensOut,
		LatencyMs:   s.pendingLatencyMs,
	})

	progress.SafeEmit(s.sink, progress.Event{
		Kind: progress.ToolFinished, Index: s.stepIdx - 1, ToolName: prep.call.Name,
		Summary: &observation.Summary,
	})
	s.journal.Write(debugjournal.ToolCallFinish, map[string]any{
		"index": s.stepIdx - 1, "tool": prep.call.Name, "error": observation.Error,
	})

	s.pendingToolCall = nil
	s.pendingReasoning = ""
	s.pendingTokensIn, s.pendingTokensOut, s.pendingLatencyMs = 0, 0, 0

	s.history = append(s.history, domain.Message{Role: domain.RoleTool, Content: observationText(observation)})

	if s.monitor.ShouldNudge() {
		s.history = append(s.history, domain.Message{Role: domain.RoleUser, Content: repeatCallNudge})
		s.monitor.ResetRepeatStreak()
	}

	if d := checkAll(s); d.Stop {
		s.forced = true
		s.forcedReason = d.Reason
		return core.ActionFinalize
	}
	return core.ActionDefault
}

// rejectedResult turns a toolschema.Validate failure into the same
// ToolResult shape a backend error would produce — an observation, never a
// propagated error.
func rejectedResult(name domain.ToolName, err error) domain.ToolResult {
	return domain.ToolResult{
		Tool:    name,
		Result:  map[string]any{"error": err.Error()},
		Summary: domain.ResultSummary{Type: "object"},
		Error:   err.Error(),
	}
}

// observationText renders a ToolResult as the content of a tool-role
// message fed back into history for the next generate turn.
func observationText(result domain.ToolResult) string {
	data, err := json.Marshal(result)
	if err != nil {
		return `{"error":"failed to encode tool observation"}`
	}
	return string(data)
}

// repeatCallNudge is injected once the same tool call has repeated three
// times in a row, to steer the model toward diversifying or finalizing
// instead of looping indefinitely.
const repeatCallNudge = "You have called the same tool with the same parameters three times in a row. " +
	"Either choose a different tool or parameters, or finalize your answer now."
