package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codegraph-ai/agentic-core/internal/core"
	"github.com/codegraph-ai/agentic-core/internal/debugjournal"
	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/llmclient"
	"github.com/codegraph-ai/agentic-core/internal/progress"
)

// forcedSummaryTimeoutMs bounds the best-effort "summarize what you have so
// far" probe asked of the LLM when a budget is exhausted before the model
// reached is_final=true. Short and non-negotiable: this is a courtesy, not
// another full turn.
const forcedSummaryTimeoutMs = 8_000

// finalizeExec is either the untouched normal-path answer, or the result of
// the forced-finalization probe (which may itself fail or time out).
// tokensIn/tokensOut are only populated on the forced path — the normal
// path's tokens were already accounted for by the generate turn that
// produced is_final=true.
type finalizeExec struct {
	answer    string
	tokensIn  int
	tokensOut int
}

// finalizeNode is the AnswerNode analog, generalized to cover both the
// normal path (the model itself emitted is_final=true) and forced
// finalization (a budget, cancellation, or parse-failure termination cut
// the loop short and a best-effort summary is synthesized instead).
type finalizeNode struct{}

func newFinalizeNode() *finalizeNode { return &finalizeNode{} }

// finalizePrep distinguishes the two paths without re-deriving state inside
// Exec: normal finalization needs no LLM call at all.
type finalizePrep struct {
	forced  bool
	answer  string // set when !forced
	llm     llmclient.Client
	system  string
	history []domain.Message
}

func (n *finalizeNode) Prep(s *state) []finalizePrep {
	if !s.forced {
		return []finalizePrep{{forced: false, answer: s.pendingAnswer}}
	}
	return []finalizePrep{{
		forced:  true,
		llm:     s.llm,
		system:  s.systemPrompt,
		history: append(append([]domain.Message(nil), s.history...), domain.Message{Role: domain.RoleUser, Content: forcedSummaryPrompt(s.forcedReason)}),
	}}
}

func (n *finalizeNode) Exec(ctx context.Context, prep finalizePrep) (finalizeExec, error) {
	if !prep.forced {
		return finalizeExec{answer: prep.answer}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, forcedSummaryTimeoutMs*time.Millisecond)
	defer cancel()

	res, err := prep.llm.Generate(ctx, prep.system, prep.history, llmclient.Options{
		MaxOutputTokens: 512,
		Temperature:     0.2,
		TimeoutMs:       forcedSummaryTimeoutMs,
	})
	if err != nil {
		return finalizeExec{}, err
	}
	return finalizeExec{answer: strings.TrimSpace(res.Text), tokensIn: res.TokensIn, tokensOut: res.TokensOut}, nil
}

// ExecFallback handles a failed or timed-out forced-summary probe: fall
// back to the fully deterministic synthesis rather than propagate an error.
func (n *finalizeNode) ExecFallback(err error) finalizeExec {
	return finalizeExec{}
}

func (n *finalizeNode) Post(s *state, prepRes []finalizePrep, execResults ...finalizeExec) core.Action {
	exec := execResults[0]
	prep := prepRes[0]

	if !prep.forced {
		s.finalAnswer = exec.answer
		s.completedSuccessfully = true
		s.terminationReason = domain.FinalAnswer

		s.monitor.RecordStep()
		s.monitor.RecordTokens(s.pendingTokensIn, s.pendingTokensOut)
		s.appendStep(domain.AgentStep{
			Phase:     domain.PhaseFinal,
			Reasoning: s.pendingReasoning,
			TokensIn:  s.pendingTokensIn,
			TokensOut: s.pendingTokensOut,
			LatencyMs: s.pendingLatencyMs,
		})
	} else {
		answer := exec.answer
		if answer == "" {
			answer = deterministicFallback(s)
		}
		s.finalAnswer = answer
		s.completedSuccessfully = false
		s.terminationReason = s.forcedReason

		// s.pendingTokensIn/Out here is whatever the round that triggered
		// forced finalization left unrecorded: tokens of retried malformed
		// envelopes (ParseFailure, UpstreamError, or a stop caught in
		// generateNode.Prep), or the generate turn whose tool call a stop in
		// dispatchNode.Prep kept from running; zero for a stop caught at the
		// end of dispatchNode.Post. The
		// forced-summary probe's own tokens (if it ran) are added on top —
		// every token ever recorded ends up attributed to exactly one step.
		totalIn := s.pendingTokensIn + exec.tokensIn
		totalOut := s.pendingTokensOut + exec.tokensOut
		s.monitor.RecordStep()
		s.monitor.RecordTokens(totalIn, totalOut)
		s.appendStep(domain.AgentStep{
			Phase:     domain.PhaseFinal,
			Reasoning: "forced finalization: " + string(s.forcedReason),
			TokensIn:  totalIn,
			TokensOut: totalOut,
		})
	}

	progress.SafeEmit(s.sink, progress.Event{
		Kind: progress.Completed, Reason: s.terminationReason, Tokens: s.monitor.TokensTotal(),
	})
	s.journal.Write(debugjournal.AgentFinish, map[string]any{
		"termination_reason":     s.terminationReason,
		"completed_successfully": s.completedSuccessfully,
		"total_steps":            s.monitor.StepsTaken(),
	})

	return core.ActionEnd
}

// forcedSummaryPrompt asks the model, in one short turn, to summarize
// whatever it has grounded so far rather than continue investigating.
func forcedSummaryPrompt(reason domain.TerminationReason) string {
	return fmt.Sprintf("You must stop now (%s). Using only the tool observations already in this "+
		"conversation, give the best grounded answer you can in one or two sentences. Do not call any "+
		"more tools and do not emit the JSON envelope — reply with plain text.", reason)
}

// deterministicFallback synthesizes an answer with zero LLM involvement
// when even the forced-summary probe fails — naming the termination reason
// and enumerating what was actually gathered, so every recoverable
// termination still returns a populated answer, never an empty one.
func deterministicFallback(s *state) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unable to produce a grounded final answer: %s.", s.forcedReason)
	if len(s.steps) == 0 {
		b.WriteString(" No tool observations were gathered before termination.")
		return b.String()
	}
	b.WriteString(" Observations gathered before termination: ")
	first := true
	for _, step := range s.steps {
		if step.ToolCall == nil {
			continue
		}
		if !first {
			b.WriteString("; ")
		}
		first = false
		fmt.Fprintf(&b, "%s", step.ToolCall.Name)
		if step.Observation != nil && step.Observation.Error != "" {
			fmt.Fprintf(&b, " (error: %s)", step.Observation.Error)
		} else if step.Observation != nil {
			fmt.Fprintf(&b, " (%s)", step.Observation.Summary.Type)
		}
	}
	b.WriteString(".")
	return b.String()
}
