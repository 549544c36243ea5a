// Package toolschema declares the fixed six-tool graph vocabulary as Go
// structs and validates/coerces LLM-proposed parameters against them.
//
// Tool set is fixed and known at compile time (no runtime registration), so
// validation is a lookup in a closed table keyed by domain.ToolName rather
// than a generic schema builder.
package toolschema

import (
	"encoding/json"
	"fmt"

	"github.com/codegraph-ai/agentic-core/internal/domain"
)

// ParamKind is the JSON type a parameter coerces to.
type ParamKind string

const (
	KindString  ParamKind = "string"
	KindInteger ParamKind = "integer"
)

// ParamSpec declares one parameter of one tool.
type ParamSpec struct {
	Key         string
	Kind        ParamKind
	Description string
	Required    bool
	Default     any // used when the key is absent and Required is false
	ClampMin    int // integer params only; 0,0 means "no clamp"
	ClampMax    int
}

// Spec is the full declared schema for one tool.
type Spec struct {
	Name        domain.ToolName
	Description string
	Params      []ParamSpec
}

// Registry is the closed, compile-time table of the six canonical tools.
// Exhaustive over domain.ToolNames; Validate rejects any name not in it.
var Registry = map[domain.ToolName]Spec{
	domain.GetTransitiveDependencies: {
		Name:        domain.GetTransitiveDependencies,
		Description: "Return the set of nodes reachable from node_id by following edges of edge_type outward, up to depth hops.",
		Params: []ParamSpec{
			{Key: "node_id", Kind: KindString, Required: true, Description: "graph node identifier to start from"},
			{Key: "edge_type", Kind: KindString, Required: false, Default: "Calls", Description: "edge type to traverse"},
			{Key: "depth", Kind: KindInteger, Required: false, Default: 3, ClampMin: 1, ClampMax: 10, Description: "traversal depth"},
		},
	},
	domain.GetReverseDependencies: {
		Name:        domain.GetReverseDependencies,
		Description: "Return the set of nodes that reach node_id by following edges of edge_type inward, up to depth hops.",
		Params: []ParamSpec{
			{Key: "node_id", Kind: KindString, Required: true, Description: "graph node identifier to start from"},
			{Key: "edge_type", Kind: KindString, Required: false, Default: "Calls", Description: "edge type to traverse"},
			{Key: "depth", Kind: KindInteger, Required: false, Default: 3, ClampMin: 1, ClampMax: 10, Description: "traversal depth"},
		},
	},
	domain.TraceCallChain: {
		Name:        domain.TraceCallChain,
		Description: "Trace call chains starting at from_node, up to max_depth hops.",
		Params: []ParamSpec{
			{Key: "from_node", Kind: KindString, Required: true, Description: "graph node identifier to start the trace from"},
			{Key: "max_depth", Kind: KindInteger, Required: false, Default: 5, ClampMin: 1, ClampMax: 10, Description: "maximum trace depth"},
		},
	},
	domain.DetectCircularDependencies: {
		Name:        domain.DetectCircularDependencies,
		Description: "Detect cycles among edges of edge_type in the graph.",
		Params: []ParamSpec{
			{Key: "edge_type", Kind: KindString, Required: false, Default: "Calls", Description: "edge type to check for cycles"},
		},
	},
	domain.CalculateCouplingMetrics: {
		Name:        domain.CalculateCouplingMetrics,
		Description: "Compute afferent/efferent coupling metrics for node_id.",
		Params: []ParamSpec{
			{Key: "node_id", Kind: KindString, Required: true, Description: "graph node identifier to compute metrics for"},
		},
	},
	domain.GetHubNodes: {
		Name:        domain.GetHubNodes,
		Description: "Return nodes whose degree is at least min_degree.",
		Params: []ParamSpec{
			{Key: "min_degree", Kind: KindInteger, Required: false, Default: 5, Description: "minimum node degree"},
		},
	},
}

// Validate coerces and validates params against the declared schema for
// name: integers are coerced from float64/json.Number/string, depth-like
// params are clamped to their declared [ClampMin, ClampMax] range, unknown
// keys are rejected, and missing required keys are rejected. It never
// mutates the input map; the returned map carries defaults applied.
//
// The executor MUST NOT invent or rename parameters to match the backend
// signature — rejection, not silent renaming, is the contract.
func Validate(name domain.ToolName, params map[string]any) (map[string]any, error) {
	spec, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("toolschema: unknown tool %q", name)
	}

	declared := make(map[string]ParamSpec, len(spec.Params))
	for _, p := range spec.Params {
		declared[p.Key] = p
	}

	for key := range params {
		if _, ok := declared[key]; !ok {
			return nil, fmt.Errorf("toolschema: unknown parameter %q for tool %q", key, name)
		}
	}

	out := make(map[string]any, len(spec.Params))
	for _, p := range spec.Params {
		raw, present := params[p.Key]
		if !present {
			if p.Required {
				return nil, fmt.Errorf("toolschema: missing required parameter %q for tool %q", p.Key, name)
			}
			out[p.Key] = p.Default
			continue
		}

		switch p.Kind {
		case KindString:
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("toolschema: parameter %q for tool %q must be a string", p.Key, name)
			}
			out[p.Key] = s

		case KindInteger:
			n, err := coerceInt(raw)
			if err != nil {
				return nil, fmt.Errorf("toolschema: parameter %q for tool %q: %w", p.Key, name, err)
			}
			if p.ClampMin != 0 || p.ClampMax != 0 {
				if n < p.ClampMin {
					n = p.ClampMin
				}
				if n > p.ClampMax {
					n = p.ClampMax
				}
			}
			out[p.Key] = n
		}
	}
	return out, nil
}

// coerceInt accepts the numeric shapes that arrive from JSON-decoded LLM
// output (float64 from encoding/json, json.Number, or a literal int) and a
// string fallback for defensive parsing of loosely-typed tool_call params.
func coerceInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to integer", string(n))
		}
		return int(i), nil
	case string:
		var i int
		if _, err := fmt.Sscanf(n, "%d", &i); err != nil {
			return 0, fmt.Errorf("cannot coerce %q to integer", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to integer", v)
	}
}

// Describe renders the declared schema for name as prompt-embeddable text,
// used by PromptRegistry to enumerate the six tools verbatim.
func Describe(name domain.ToolName) string {
	spec := Registry[name]
	out := fmt.Sprintf("%s(%s): %s", spec.Name, paramList(spec.Params), spec.Description)
	return out
}

// DescribeAll renders all six tool schemas in canonical declaration order,
// one per line, for embedding in the system prompt.
func DescribeAll() string {
	var out string
	for i, n := range domain.ToolNames {
		if i > 0 {
			out += "\n"
		}
		out += "- " + Describe(n)
	}
	return out
}

func paramList(params []ParamSpec) string {
	var out string
	for i, p := range params {
		if i > 0 {
			out += ", "
		}
		out += p.Key + ": " + string(p.Kind)
		if !p.Required {
			out += fmt.Sprintf("=default %v", p.Default)
		}
		if p.ClampMin != 0 || p.ClampMax != 0 {
			out += fmt.Sprintf(", bounds %d..%d", p.ClampMin, p.ClampMax)
		}
	}
	return out
}
