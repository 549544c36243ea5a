package parser_test

import (
	"testing"

	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/parser"
)

func TestParse_wholeBody(t *testing.T) {
	raw := `{"reasoning":"use reverse deps","tool_call":{"name":"get_reverse_dependencies","parameters":{"node_id":"nodes:login_123","edge_type":"Calls","depth":1}},"is_final":false}`
	env, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if env.IsFinal {
		t.Error("IsFinal = true, want false")
	}
	if env.ToolCall == nil || env.ToolCall.Name != domain.GetReverseDependencies {
		t.Fatalf("ToolCall = %+v, want get_reverse_dependencies", env.ToolCall)
	}
}

func TestParse_finalAnswer(t *testing.T) {
	raw := `{"reasoning":"FINAL ANSWER: 3 callers: nodes:a, nodes:b, nodes:c","tool_call":null,"is_final":true}`
	env, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !env.IsFinal || env.ToolCall != nil {
		t.Errorf("env = %+v, want is_final=true tool_call=nil", env)
	}
}

func TestParse_surroundedByProse(t *testing.T) {
	raw := "Sure, here is my answer:\n```json\n" +
		`{"reasoning":"done","tool_call":null,"is_final":true}` +
		"\n```\nHope that helps!"
	env, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !env.IsFinal {
		t.Error("IsFinal = false, want true")
	}
}

func TestParse_lastCompleteObjectWins(t *testing.T) {
	raw := `{"reasoning":"draft, ignore"} {"reasoning":"final one","tool_call":null,"is_final":true}`
	env, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if env.Reasoning != "final one" {
		t.Errorf("Reasoning = %q, want %q", env.Reasoning, "final one")
	}
}

func TestParse_braceInsideString(t *testing.T) {
	raw := `noise {"reasoning":"contains a brace } inside a string","tool_call":null,"is_final":true} trailing`
	env, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if env.Reasoning != "contains a brace } inside a string" {
		t.Errorf("Reasoning = %q", env.Reasoning)
	}
}

func TestParse_rejectsFinalWithToolCall(t *testing.T) {
	raw := `{"reasoning":"bad","tool_call":{"name":"get_hub_nodes","parameters":{}},"is_final":true}`
	if _, err := parser.Parse(raw); err == nil {
		t.Fatal("expected error: is_final=true with non-null tool_call")
	}
}

func TestParse_rejectsNonFinalWithoutToolCall(t *testing.T) {
	raw := `{"reasoning":"bad","tool_call":null,"is_final":false}`
	if _, err := parser.Parse(raw); err == nil {
		t.Fatal("expected error: is_final=false with null tool_call")
	}
}

func TestParse_rejectsUnknownToolName(t *testing.T) {
	raw := `{"reasoning":"bad","tool_call":{"name":"detect_cycles","parameters":{}},"is_final":false}`
	if _, err := parser.Parse(raw); err == nil {
		t.Fatal("expected error: unknown tool name")
	}
}

func TestParse_noJSONAtAll(t *testing.T) {
	if _, err := parser.Parse("I think the answer is probably 42, no JSON here."); err == nil {
		t.Fatal("expected ErrParseFailure")
	}
}
