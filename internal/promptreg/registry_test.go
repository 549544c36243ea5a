package promptreg_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codegraph-ai/agentic-core/internal/domain"
	"github.com/codegraph-ai/agentic-core/internal/promptreg"
)

func TestPromptFor_idempotent(t *testing.T) {
	a := promptreg.PromptFor(domain.CodeSearch, domain.Small)
	b := promptreg.PromptFor(domain.CodeSearch, domain.Small)
	if a != b {
		t.Error("PromptFor is not byte-identical across calls")
	}
	if a == "" {
		t.Fatal("PromptFor returned empty string")
	}
}

func TestPromptFor_allTwentyEightCombinations(t *testing.T) {
	tiers := []domain.ContextTier{domain.Small, domain.Medium, domain.Large, domain.Massive}
	count := 0
	for _, a := range domain.AnalysisTypes {
		for _, tr := range tiers {
			p := promptreg.PromptFor(a, tr)
			if p == "" {
				t.Errorf("PromptFor(%s, %s) returned empty", a, tr)
			}
			if !strings.Contains(p, "get_hub_nodes") {
				t.Errorf("PromptFor(%s, %s) does not enumerate the tool vocabulary", a, tr)
			}
			if !strings.Contains(p, "FINAL ANSWER:") {
				t.Errorf("PromptFor(%s, %s) does not specify the final-answer sentinel", a, tr)
			}
			count++
		}
	}
	if count != 28 {
		t.Errorf("covered %d combinations, want 28", count)
	}
}

func TestLoadOverrides_missingFileIsNotAnError(t *testing.T) {
	if err := promptreg.LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Errorf("LoadOverrides(missing) = %v, want nil", err)
	}
}

func TestLoadOverrides_patchesRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt_overrides.yaml")
	content := "SemanticQuestion:\n  Small: \"custom small prompt\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := promptreg.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}
	got := promptreg.PromptFor(domain.SemanticQuestion, domain.Small)
	if got != "custom small prompt" {
		t.Errorf("PromptFor after override = %q, want %q", got, "custom small prompt")
	}
}
