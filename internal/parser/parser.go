// Package parser extracts and validates the `{reasoning, tool_call,
// is_final}` JSON envelope from possibly-noisy LLM output.
//
// Uses a two-path recovery strategy: direct unmarshal first, then a
// recovery pass over the raw text that scans for balanced JSON objects and
// takes the last complete one, since models often preface the envelope with
// prose.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/codegraph-ai/agentic-core/internal/domain"
)

// ErrParseFailure is returned when no conforming envelope could be
// extracted from the raw text after both recovery paths.
var ErrParseFailure = errors.New("parser: no conforming envelope found")

// rawEnvelope mirrors domain.Envelope but with ToolCall left as RawMessage
// so an absent/null tool_call is distinguishable from a malformed one.
type rawEnvelope struct {
	Reasoning string          `json:"reasoning"`
	ToolCall  json.RawMessage `json:"tool_call"`
	IsFinal   bool            `json:"is_final"`
}

// Parse extracts and validates the envelope from raw LLM text.
//
// Algorithm:
//  1. Attempt whole-body JSON parse.
//  2. On failure, balanced-brace scan (tolerant of quoted strings and
//     escapes) for complete top-level JSON objects; take the LAST complete
//     one (LLMs often emit a preface before the JSON).
//  3. Validate the three required fields and the is_final/tool_call
//     cross-field constraint.
//
// Returns ErrParseFailure (wrapped) if no candidate validates.
func Parse(raw string) (domain.Envelope, error) {
	if env, err := parseOne([]byte(raw)); err == nil {
		return env, nil
	}

	candidates := extractBalancedObjects(raw)
	var lastErr error = ErrParseFailure
	for i := len(candidates) - 1; i >= 0; i-- {
		env, err := parseOne([]byte(candidates[i]))
		if err == nil {
			return env, nil
		}
		lastErr = err
	}
	return domain.Envelope{}, fmt.Errorf("%w: %v", ErrParseFailure, lastErr)
}

// parseOne decodes and validates a single JSON-object candidate.
func parseOne(data []byte) (domain.Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Envelope{}, err
	}

	env := domain.Envelope{
		Reasoning: raw.Reasoning,
		IsFinal:   raw.IsFinal,
	}

	isNull := len(raw.ToolCall) == 0 || string(raw.ToolCall) == "null"
	if !isNull {
		var tc domain.ToolCallSpec
		if err := json.Unmarshal(raw.ToolCall, &tc); err != nil {
			return domain.Envelope{}, fmt.Errorf("invalid tool_call: %w", err)
		}
		env.ToolCall = &tc
	}

	if err := validate(env); err != nil {
		return domain.Envelope{}, err
	}
	return env, nil
}

// validate enforces: is_final ⇒ tool_call=null; ¬is_final ⇒ tool_call≠null
// ∧ tool_call.name ∈ ToolName.
func validate(env domain.Envelope) error {
	if env.Reasoning == "" {
		return errors.New("missing reasoning")
	}
	if env.IsFinal {
		if env.ToolCall != nil {
			return errors.New("is_final=true but tool_call is not null")
		}
		return nil
	}
	if env.ToolCall == nil {
		return errors.New("is_final=false but tool_call is null")
	}
	if !env.ToolCall.Name.Valid() {
		return fmt.Errorf("tool_call.name %q is not a canonical tool", env.ToolCall.Name)
	}
	return nil
}

// extractBalancedObjects scans raw for every complete top-level `{...}`
// object, tolerant of quoted strings and backslash escapes within them.
// Objects are returned in the order they appear; callers wanting the "last
// complete object wins" tie-break should iterate from the end.
func extractBalancedObjects(raw string) []string {
	var objects []string
	depth := 0
	inString := false
	escaped := false
	start := -1

	for i, r := range raw {
		if start == -1 && r != '{' {
			continue
		}
		if start == -1 && r == '{' {
			start = i
			depth = 0
			inString = false
			escaped = false
		}

		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
			// inside a string: brace characters don't affect depth
		case r == '{':
			depth++
		case r == '}':
			depth--
		}

		if start != -1 && depth == 0 && r == '}' {
			objects = append(objects, raw[start:i+1])
			start = -1
		}
	}
	return objects
}
