// Package progress defines the best-effort event sink the orchestrator
// emits step/tool/phase events to, bridging to whatever transport layer the
// caller wires up (stdout notifications, SSE, a queue). Best-effort: errors
// are swallowed and never allowed to affect orchestration.
package progress

import "github.com/codegraph-ai/agentic-core/internal/domain"

// EventKind is the closed set of progress event kinds.
type EventKind string

const (
	StepStarted  EventKind = "step_started"
	ToolStarted  EventKind = "tool_started"
	ToolFinished EventKind = "tool_finished"
	StepFinished EventKind = "step_finished"
	Completed    EventKind = "completed"
)

// Event is a single progress notification. Fields are populated according
// to Kind; irrelevant fields are left zero.
type Event struct {
	Kind      EventKind
	Index     int
	ToolName  domain.ToolName
	Params    map[string]any
	Summary   *domain.ResultSummary
	LatencyMs int64
	Tokens    int
	Reason    domain.TerminationReason
}

// Sink receives progress events. Implementations must be best-effort: Emit
// errors are never surfaced to the orchestrator. A nil Sink passed to
// SafeEmit is valid and discards all events.
type Sink interface {
	Emit(event Event)
}

// Func adapts a plain function to the Sink interface.
type Func func(Event)

// Emit implements Sink.
func (f Func) Emit(event Event) {
	if f == nil {
		return
	}
	f(event)
}

// Noop is a Sink that discards every event — the default when the caller
// does not supply one.
var Noop Sink = Func(nil)

// SafeEmit calls sink.Emit, recovering from any panic inside the sink so a
// misbehaving transport bridge can never crash the orchestrator.
func SafeEmit(sink Sink, event Event) {
	if sink == nil {
		return
	}
	defer func() { _ = recover() }()
	sink.Emit(event)
}
