// Package domain holds the shared data model for the agentic orchestration
// core: analysis types, tiers, the canonical tool vocabulary, and the
// records produced by one execute() invocation.
package domain

// AnalysisType selects the caller's intent and, transitively, the system
// prompt and step-budget multiplier used for an invocation. Closed set.
type AnalysisType string

const (
	CodeSearch           AnalysisType = "CodeSearch"
	DependencyAnalysis   AnalysisType = "DependencyAnalysis"
	CallChainAnalysis    AnalysisType = "CallChainAnalysis"
	ArchitectureAnalysis AnalysisType = "ArchitectureAnalysis"
	ApiSurfaceAnalysis   AnalysisType = "ApiSurfaceAnalysis"
	ContextBuilder       AnalysisType = "ContextBuilder"
	SemanticQuestion     AnalysisType = "SemanticQuestion"
)

// AnalysisTypes lists the closed set in a stable order, used for exhaustive
// iteration (prompt compilation, validation).
var AnalysisTypes = []AnalysisType{
	CodeSearch, DependencyAnalysis, CallChainAnalysis, ArchitectureAnalysis,
	ApiSurfaceAnalysis, ContextBuilder, SemanticQuestion,
}

// Valid reports whether a is one of the seven canonical analysis types.
func (a AnalysisType) Valid() bool {
	for _, v := range AnalysisTypes {
		if v == a {
			return true
		}
	}
	return false
}

// StepMultiplier returns the per-AnalysisType step-budget multiplier.
// Default is 1.0; ArchitectureAnalysis and ContextBuilder get 1.5 since
// they typically require exhausting more of the tier's tool budget to
// assemble a grounded answer.
func (a AnalysisType) StepMultiplier() float64 {
	switch a {
	case ArchitectureAnalysis, ContextBuilder:
		return 1.5
	default:
		return 1.0
	}
}

// ContextTier is a discrete capability class derived from the configured
// LLM context window.
type ContextTier string

const (
	Small   ContextTier = "Small"
	Medium  ContextTier = "Medium"
	Large   ContextTier = "Large"
	Massive ContextTier = "Massive"
)

// TierBudget is the immutable per-tier budget record.
type TierBudget struct {
	Tier              ContextTier
	BaseMaxSteps      int
	BaseMaxResults    int
	LocalOverretrieve int
	CloudOverretrieve int
	SafeOutputTokens  int
}

// SafeOutputTokens is the hard transport-output ceiling shared across all
// tiers, regardless of the LLM's own max_output_tokens.
const SafeOutputTokens = 44_200

// ToolName is the closed six-function graph-tool vocabulary. No other name
// is ever accepted by the validator or the executor.
type ToolName string

const (
	GetTransitiveDependencies  ToolName = "get_transitive_dependencies"
	GetReverseDependencies     ToolName = "get_reverse_dependencies"
	TraceCallChain             ToolName = "trace_call_chain"
	DetectCircularDependencies ToolName = "detect_circular_dependencies"
	CalculateCouplingMetrics   ToolName = "calculate_coupling_metrics"
	GetHubNodes                ToolName = "get_hub_nodes"
)

// ToolNames lists the closed set in a stable order.
var ToolNames = []ToolName{
	GetTransitiveDependencies, GetReverseDependencies, TraceCallChain,
	DetectCircularDependencies, CalculateCouplingMetrics, GetHubNodes,
}

// Valid reports whether n is one of the six canonical tool names.
func (n ToolName) Valid() bool {
	for _, v := range ToolNames {
		if v == n {
			return true
		}
	}
	return false
}

// ToolCallSpec is a tool invocation as proposed by the LLM.
type ToolCallSpec struct {
	Name   ToolName       `json:"name"`
	Params map[string]any `json:"parameters"`
}

// ResultSummary is the stable, compact description of a ToolResult's shape,
// always populated for the debug journal and the agent's observation.
type ResultSummary struct {
	Type  string `json:"type"` // "array" | "object" | "scalar"
	Count *int   `json:"count,omitempty"`
	Sample any   `json:"sample,omitempty"`
}

// ToolResult is the canonical, normalized shape returned by a
// GraphToolExecutor dispatch — including rejected/errored calls, which are
// observations, not exceptions.
type ToolResult struct {
	Tool      ToolName      `json:"tool"`
	Result    any           `json:"result"`
	Truncated bool          `json:"truncated"`
	Summary   ResultSummary `json:"summary"`
	Error     string        `json:"error,omitempty"`
}

// StepPhase is the phase of a single AgentStep.
type StepPhase string

const (
	PhaseReason StepPhase = "reason"
	PhaseTool   StepPhase = "tool"
	PhaseFinal  StepPhase = "final"
)

// AgentStep records one turn of the reason-act loop.
type AgentStep struct {
	Index      int           `json:"index"`
	Phase      StepPhase     `json:"phase"`
	Reasoning  string        `json:"reasoning"`
	ToolCall   *ToolCallSpec `json:"tool_call,omitempty"`
	Observation *ToolResult  `json:"observation,omitempty"`
	TokensIn   int           `json:"tokens_in"`
	TokensOut  int           `json:"tokens_out"`
	LatencyMs  int64         `json:"latency_ms"`
}

// TerminationReason is the closed set of reasons an execute() call ends.
type TerminationReason string

const (
	FinalAnswer           TerminationReason = "FinalAnswer"
	StepBudgetExhausted   TerminationReason = "StepBudgetExhausted"
	TokenBudgetExhausted  TerminationReason = "TokenBudgetExhausted"
	Cancelled             TerminationReason = "Cancelled"
	DeadlineExceeded      TerminationReason = "DeadlineExceeded"
	ParseFailure          TerminationReason = "ParseFailure"
	ToolFailure           TerminationReason = "ToolFailure"
	UpstreamError         TerminationReason = "UpstreamError"
)

// AgenticResult is the sole return value of execute() — always returned on
// any recoverable termination, never thrown.
type AgenticResult struct {
	AnalysisType          AnalysisType         `json:"analysis_type"`
	Tier                  ContextTier          `json:"tier"`
	Query                 string               `json:"query"`
	FinalAnswer           string               `json:"final_answer"`
	Steps                 []AgentStep          `json:"steps"`
	TotalSteps            int                  `json:"total_steps"`
	DurationMs            int64                `json:"duration_ms"`
	TotalTokens           int                  `json:"total_tokens"`
	CompletedSuccessfully bool                 `json:"completed_successfully"`
	TerminationReason     TerminationReason    `json:"termination_reason"`
	ToolCallStats         map[ToolName]int     `json:"tool_call_stats"`
}

// Message is a single turn in the conversation handed to LlmClient.generate.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant" | "tool"
	Content string `json:"content"`
}

// Role constants for Message.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Envelope is the parsed, validated `{reasoning, tool_call, is_final}` shape
// the LLM must emit on every turn.
type Envelope struct {
	Reasoning string        `json:"reasoning"`
	ToolCall  *ToolCallSpec `json:"tool_call"`
	IsFinal   bool          `json:"is_final"`
}

// FinalAnswerSentinel prefixes the reasoning field on the turn that carries
// the final answer (is_final=true). PromptRegistry instructs the model to
// emit it; the Orchestrator strips it before surfacing FinalAnswer.
const FinalAnswerSentinel = "FINAL ANSWER:"
