// Package budget tracks steps, tokens, wall-clock, and cancellation for one
// execute() invocation and signals when the loop must stop. An atomic
// token counter and wall-clock deadline are extended with a step counter,
// a cooperative cancellation flag, and repeated-tool-call detection for
// the "diversify or finalize" nudge.
package budget

import (
	"crypto/md5" //nolint:gosec // deduplication key only, not security-sensitive
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/codegraph-ai/agentic-core/internal/domain"
)

// Decision is the outcome of a Monitor.Check call.
type Decision struct {
	Stop   bool
	Reason domain.TerminationReason
}

// continueDecision is returned by Check when the loop may proceed.
var continueDecision = Decision{}

// Monitor enforces step/token/deadline/cancellation budgets for one
// execute() invocation. Not safe for concurrent use from multiple
// goroutines — the orchestrator's reason-act loop is single-threaded per
// invocation.
type Monitor struct {
	maxSteps    int
	maxTokens   int // 0 = disabled
	deadline    time.Time
	hasDeadline bool

	stepsTaken  int
	tokensTotal atomic.Int64
	cancelled   atomic.Bool

	repeatStreak int
	lastCallKey  string
}

// New creates a Monitor for one invocation. maxTokens<=0 disables the
// cumulative token budget. A zero deadline disables the wall-clock budget.
func New(maxSteps, maxTokens int, deadline time.Time) *Monitor {
	return &Monitor{
		maxSteps:    maxSteps,
		maxTokens:   maxTokens,
		deadline:    deadline,
		hasDeadline: !deadline.IsZero(),
	}
}

// Cancel marks the invocation as cooperatively cancelled. Safe to call from
// any goroutine (e.g. in response to a caller-supplied cancellation token).
func (m *Monitor) Cancel() { m.cancelled.Store(true) }

// RecordStep increments the step counter. Called once per completed
// reason-act round (a tool round combines its generate and dispatch turns),
// including a forced finalization round — every round that produces an
// AgentStep counts against the step budget.
func (m *Monitor) RecordStep() { m.stepsTaken++ }

// StepsTaken returns the number of steps recorded so far.
func (m *Monitor) StepsTaken() int { return m.stepsTaken }

// RecordTokens adds tokensIn+tokensOut to the running total. Safe for
// concurrent calls (atomic), though the orchestrator drives this
// single-threaded per invocation.
func (m *Monitor) RecordTokens(tokensIn, tokensOut int) {
	m.tokensTotal.Add(int64(tokensIn + tokensOut))
}

// TokensTotal returns the cumulative tokens_in+tokens_out recorded so far.
func (m *Monitor) TokensTotal() int { return int(m.tokensTotal.Load()) }

// Check is consulted before every LLM turn and before every tool dispatch.
// Evaluation order: cancellation, deadline, step budget, token budget — the
// first exceeded condition wins.
func (m *Monitor) Check() Decision {
	if m.cancelled.Load() {
		return Decision{Stop: true, Reason: domain.Cancelled}
	}
	if m.hasDeadline && time.Now().After(m.deadline) {
		return Decision{Stop: true, Reason: domain.DeadlineExceeded}
	}
	if m.maxSteps > 0 && m.stepsTaken >= m.maxSteps {
		return Decision{Stop: true, Reason: domain.StepBudgetExhausted}
	}
	if m.maxTokens > 0 && int(m.tokensTotal.Load()) >= m.maxTokens {
		return Decision{Stop: true, Reason: domain.TokenBudgetExhausted}
	}
	return continueDecision
}

// RecordToolCall tracks identical (name, params) tool calls made back to
// back. Call RecordToolCall after every dispatch; ShouldNudge reports
// whether the streak has reached three in a row.
func (m *Monitor) RecordToolCall(call domain.ToolCallSpec) {
	key := toolCallKey(call)
	if key == m.lastCallKey {
		m.repeatStreak++
	} else {
		m.repeatStreak = 1
		m.lastCallKey = key
	}
}

// ShouldNudge reports whether the same tool call has now repeated three
// times in a row and a "diversify or finalize" nudge should be injected.
func (m *Monitor) ShouldNudge() bool { return m.repeatStreak >= 3 }

// ResetRepeatStreak clears the repeat-call counter, e.g. after the nudge has
// been delivered once so it is not re-injected on every subsequent call.
func (m *Monitor) ResetRepeatStreak() { m.repeatStreak = 0 }

// toolCallKey returns a stable dedup key for a tool call: name plus an MD5
// hash of its canonicalized (sorted-key) JSON parameters.
func toolCallKey(call domain.ToolCallSpec) string {
	data, err := json.Marshal(call.Params)
	if err != nil {
		return string(call.Name)
	}
	h := md5.Sum(data) //nolint:gosec // deduplication key only
	return fmt.Sprintf("%s:%x", call.Name, h)
}
