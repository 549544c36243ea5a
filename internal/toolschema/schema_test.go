package toolschema_test

import (
	"strings"
	"testing"

	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/toolschema"
)

func TestValidate_appliesDefaults(t *testing.T) {
	out, err := toolschema.Validate(domain.GetReverseDependencies, map[string]any{
		"node_id": "nodes:login_123",
	})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if out["edge_type"] != "Calls" {
		t.Errorf("edge_type default = %v, want Calls", out["edge_type"])
	}
	if out["depth"] != 3 {
		t.Errorf("depth default = %v, want 3", out["depth"])
	}
}

func TestValidate_clampsDepth(t *testing.T) {
	out, err := toolschema.Validate(domain.TraceCallChain, map[string]any{
		"from_node": "nodes:a",
		"max_depth": float64(999),
	})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if out["max_depth"] != 10 {
		t.Errorf("max_depth = %v, want clamped to 10", out["max_depth"])
	}

	out, err = toolschema.Validate(domain.TraceCallChain, map[string]any{
		"from_node": "nodes:a",
		"max_depth": float64(0),
	})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if out["max_depth"] != 1 {
		t.Errorf("max_depth = %v, want clamped to 1", out["max_depth"])
	}
}

func TestValidate_rejectsUnknownKey(t *testing.T) {
	_, err := toolschema.Validate(domain.GetReverseDependencies, map[string]any{
		"node_id":         "nodes:a",
		"min_connections": 5,
	})
	if err == nil {
		t.Fatal("expected error for unknown parameter min_connections")
	}
}

func TestValidate_rejectsMissingRequired(t *testing.T) {
	_, err := toolschema.Validate(domain.CalculateCouplingMetrics, map[string]any{})
	if err == nil {
		t.Fatal("expected error for missing required node_id")
	}
}

func TestValidate_rejectsUnknownTool(t *testing.T) {
	_, err := toolschema.Validate(domain.ToolName("detect_cycles"), map[string]any{})
	if err == nil {
		t.Fatal("expected error for unknown tool name")
	}
}

func TestValidate_coercesStringInteger(t *testing.T) {
	out, err := toolschema.Validate(domain.GetHubNodes, map[string]any{"min_degree": "7"})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if out["min_degree"] != 7 {
		t.Errorf("min_degree = %v, want 7", out["min_degree"])
	}
}

func TestDescribeAll_listsAllSixTools(t *testing.T) {
	desc := toolschema.DescribeAll()
	for _, n := range domain.ToolNames {
		if !strings.Contains(desc, string(n)) {
			t.Errorf("DescribeAll() missing tool %q", n)
		}
	}
}
