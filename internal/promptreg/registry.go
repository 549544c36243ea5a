// Package promptreg hosts the 28 canonical system prompts (7 analysis
// types x 4 tiers) as compiled constants, collapsed to a pure lookup at
// init() rather than recomputed per call — PromptFor is idempotent and
// byte-identical across calls for the same arguments.
//
// Built as a layered-section assembly (shared envelope contract, then a
// per-analysis-type fragment, then a per-tier budget fragment) collapsed at
// package init instead of per-call, with an optional "disk override beats
// embedded default" layer for prompt_overrides.yaml.
package promptreg

import (
	"fmt"

	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/toolschema"
)

// envelopeContract is the shared, hardcoded L1 fragment, identical for every
// tier and analysis type. An entry in prompt_overrides.yaml replaces the
// whole assembled prompt, this fragment included.
const envelopeContract = `You are CodeGraph's agentic analysis engine. Every turn you must emit
exactly one JSON object with this shape, nothing else:

  {"reasoning": string, "tool_call": {"name": string, "parameters": object} | null, "is_final": bool}

Rules:
- While investigating: tool_call is non-null and is_final is false.
- When you have enough grounded evidence to answer: tool_call is null, is_final is true,
  and reasoning begins with the sentinel "FINAL ANSWER:" followed by your answer.
- Zero-heuristics contract: every factual claim in your final answer must cite a node id,
  edge, or metric drawn from a prior tool observation. Never fabricate an identifier.

Available tools:
` + toolschema.DescribeAll()

// perAnalysisFragment holds tool-usage guidance and zero-heuristics
// reminders specific to each analysis type.
var perAnalysisFragment = map[domain.AnalysisType]string{
	domain.CodeSearch: "Task: locate the code entity the user is asking about and describe its " +
		"relationships. Favor get_reverse_dependencies or get_transitive_dependencies for " +
		"\"what calls X\" / \"what does X depend on\" questions.",
	domain.DependencyAnalysis: "Task: characterize dependency relationships between nodes. Use " +
		"get_transitive_dependencies, get_reverse_dependencies, and calculate_coupling_metrics " +
		"together to build a grounded picture before answering.",
	domain.CallChainAnalysis: "Task: trace how control flows from one function to another. Use " +
		"trace_call_chain as your primary tool; corroborate with get_transitive_dependencies " +
		"when the chain is ambiguous.",
	domain.ArchitectureAnalysis: "Task: describe the system's module structure. Use get_hub_nodes " +
		"to find architecturally significant nodes, detect_circular_dependencies to surface " +
		"coupling problems, and calculate_coupling_metrics to quantify them. This analysis " +
		"typically needs more tool calls than a single-fact lookup — use your full step budget " +
		"if the tier allows it.",
	domain.ApiSurfaceAnalysis: "Task: enumerate the externally visible surface of a module. Use " +
		"get_reverse_dependencies on candidate entry points and get_hub_nodes to confirm which " +
		"nodes are widely depended upon.",
	domain.ContextBuilder: "Task: assemble the minimal grounded context needed to answer a " +
		"broader downstream question. Gather multiple observations — transitive dependencies, " +
		"call chains, and coupling metrics — before finalizing; this analysis is allowed extra " +
		"steps to avoid under-grounded answers.",
	domain.SemanticQuestion: "Task: answer a natural-language question about the codebase's " +
		"behavior or design. Choose whichever tools ground your answer in concrete nodes and " +
		"edges; do not speculate beyond what a tool observation supports.",
}

// perTierFragment holds step/depth budget guidance specific to each tier.
var perTierFragment = map[domain.ContextTier]string{
	domain.Small: "Budget guidance: you have a small step budget. Favor a single well-chosen " +
		"tool call and finalize as soon as it grounds an answer.",
	domain.Medium: "Budget guidance: you have a moderate step budget. Two or three tool calls " +
		"are reasonable before finalizing; avoid redundant calls with the same parameters.",
	domain.Large: "Budget guidance: you have a generous step budget. Cross-check observations " +
		"with a second tool when the first is ambiguous or contradicts the question.",
	domain.Massive: "Budget guidance: you have a large step budget and may use most of it when " +
		"the analysis type calls for broad coverage (e.g. architecture or context-building " +
		"tasks); do not finalize prematurely on a single observation.",
}

// registry is the 7x4 compiled prompt table, built once at init().
var registry = buildRegistry()

func buildRegistry() map[domain.AnalysisType]map[domain.ContextTier]string {
	reg := make(map[domain.AnalysisType]map[domain.ContextTier]string, len(domain.AnalysisTypes))
	for _, a := range domain.AnalysisTypes {
		reg[a] = make(map[domain.ContextTier]string, 4)
		for _, t := range []domain.ContextTier{domain.Small, domain.Medium, domain.Large, domain.Massive} {
			reg[a][t] = fmt.Sprintf("%s\n\n%s\n\n%s\n", envelopeContract, perAnalysisFragment[a], perTierFragment[t])
		}
	}
	return reg
}

// PromptFor returns the static, tier-appropriate system prompt for
// (analysis, tier). Pure lookup — byte-identical across calls for the same
// arguments. Overrides applied via LoadOverrides take effect for all
// subsequent calls.
func PromptFor(analysis domain.AnalysisType, tier domain.ContextTier) string {
	byTier, ok := registry[analysis]
	if !ok {
		return ""
	}
	return byTier[tier]
}
