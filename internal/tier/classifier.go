// Package tier classifies a configured LLM context window into one of four
// capability tiers and derives the per-tier step/result/overretrieve budget.
package tier

import (
	"log"
	"os"
	"strconv"

	"github.com/codegraph-ai/agentic-core/internal/domain"
)

// envContextWindow overrides the caller-configured context window for tier
// classification when set. Takes precedence over the configured value.
const envContextWindow = "CODEGRAPH_CONTEXT_WINDOW"

// budgets is the canonical boundary table, indexed by tier.
var budgets = map[domain.ContextTier]domain.TierBudget{
	domain.Small: {
		Tier: domain.Small, BaseMaxSteps: 5, BaseMaxResults: 10,
		LocalOverretrieve: 5, CloudOverretrieve: 3, SafeOutputTokens: domain.SafeOutputTokens,
	},
	domain.Medium: {
		Tier: domain.Medium, BaseMaxSteps: 10, BaseMaxResults: 25,
		LocalOverretrieve: 8, CloudOverretrieve: 4, SafeOutputTokens: domain.SafeOutputTokens,
	},
	domain.Large: {
		Tier: domain.Large, BaseMaxSteps: 15, BaseMaxResults: 50,
		LocalOverretrieve: 10, CloudOverretrieve: 5, SafeOutputTokens: domain.SafeOutputTokens,
	},
	domain.Massive: {
		Tier: domain.Massive, BaseMaxSteps: 20, BaseMaxResults: 100,
		LocalOverretrieve: 15, CloudOverretrieve: 8, SafeOutputTokens: domain.SafeOutputTokens,
	},
}

// Classify maps a context window (in tokens) to its tier and budget.
// Pure and total: an invalid (<=0) window falls through to Small and logs
// a warning instead of failing.
func Classify(contextWindow int) (domain.ContextTier, domain.TierBudget) {
	if contextWindow <= 0 {
		log.Printf("[Tier] WARNING: invalid context window %d, falling back to Small", contextWindow)
		return domain.Small, budgets[domain.Small]
	}

	var t domain.ContextTier
	switch {
	case contextWindow <= 50_000:
		t = domain.Small
	case contextWindow <= 150_000:
		t = domain.Medium
	case contextWindow <= 500_000:
		t = domain.Large
	default:
		t = domain.Massive
	}
	return t, budgets[t]
}

// ResolveContextWindow returns the effective context window: the
// CODEGRAPH_CONTEXT_WINDOW environment override if set and valid, else the
// caller-configured value. An invalid override is logged and ignored.
func ResolveContextWindow(configured int) int {
	v := os.Getenv(envContextWindow)
	if v == "" {
		return configured
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[Tier] WARNING: invalid %s=%q, ignoring override", envContextWindow, v)
		return configured
	}
	return n
}

// ClassifyEnv resolves the context window (applying the environment
// override) and classifies it in one call — the entry point Orchestrator
// actually uses.
func ClassifyEnv(configured int) (domain.ContextTier, domain.TierBudget) {
	return Classify(ResolveContextWindow(configured))
}

// StepBudget returns the effective max-steps ceiling for an (analysis,
// tier) pair: base_max_steps * analysis_multiplier, rounded down.
func StepBudget(budget domain.TierBudget, analysis domain.AnalysisType) int {
	return int(float64(budget.BaseMaxSteps) * analysis.StepMultiplier())
}

// ResultCap returns the per-tier result cap for a dispatch: base_max_results
// * overretrieve_multiplier. cloud selects between the local and cloud
// overretrieve multipliers (the executor is typically backed by a remote
// graph service, so cloud is the default GraphToolExecutor posture).
func ResultCap(budget domain.TierBudget, cloud bool) int {
	if cloud {
		return budget.BaseMaxResults * budget.CloudOverretrieve
	}
	return budget.BaseMaxResults * budget.LocalOverretrieve
}
