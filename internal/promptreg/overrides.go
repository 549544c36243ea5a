package promptreg

import (
	"fmt"
	"log"
	"os"

	"github.com/codegraph-ai/agentic-core/internal/domain"
	"gopkg.in/yaml.v3"
)

// overridesFile mirrors the on-disk shape of prompt_overrides.yaml:
// top-level keys are analysis type names, nested keys are tier names.
//
//	CodeSearch:
//	  Small: "...replacement prompt text..."
type overridesFile map[string]map[string]string

// LoadOverrides reads path (a prompt_overrides.yaml) and patches the
// compiled registry in place: a disk override beats the embedded default,
// scoped to this registry's flat 7x4 surface (analysis type x tier, no
// deeper layering).
//
// A missing file is not an error (overrides are optional). A file that
// cannot be read or parsed returns an error and leaves the registry
// unchanged; an unknown analysis-type/tier key logs a warning and is
// skipped while the remaining entries are applied.
func LoadOverrides(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("promptreg: read overrides %q: %w", path, err)
	}

	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("promptreg: parse overrides %q: %w", path, err)
	}

	for analysisName, byTier := range file {
		a := domain.AnalysisType(analysisName)
		if !a.Valid() {
			log.Printf("[PromptRegistry] Warning: overrides file has unknown analysis type %q, skipping", analysisName)
			continue
		}
		for tierName, text := range byTier {
			t := domain.ContextTier(tierName)
			if _, ok := registry[a][t]; !ok {
				log.Printf("[PromptRegistry] Warning: overrides file has unknown tier %q for %q, skipping", tierName, analysisName)
				continue
			}
			registry[a][t] = text
		}
	}
	return nil
}
