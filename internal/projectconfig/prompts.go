package projectconfig

import (
	"fmt"
	"os"

	"github.com/codecrdt/modeval/internal/models"
	"gopkg.in/yaml.v3"
)

type promptsFile struct {
	Prompts []models.EvaluationPrompt `yaml:"prompts" validate:"required,min=1,dive"`
}

// LoadPrompts reads the evaluation prompts from a YAML file with a top-level
// prompts list. IDs are sanitized for use in file names and must be unique.
func LoadPrompts(path string) ([]models.EvaluationPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompts: %w", err)
	}

	var pf promptsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing prompts %s: %w", path, err)
	}
	if err := validate.Struct(&pf); err != nil {
		return nil, fmt.Errorf("invalid prompts %s: %w", path, err)
	}

	seen := make(map[string]bool, len(pf.Prompts))
	for i := range pf.Prompts {
		id := models.SanitizeID(pf.Prompts[i].ID)
		if seen[id] {
			return nil, fmt.Errorf("duplicate prompt id %q in %s", id, path)
		}
		seen[id] = true
		pf.Prompts[i].ID = id
	}
	return pf.Prompts, nil
}

// FilterPrompts keeps the prompts whose id is in ids. An empty ids returns
// prompts unchanged. Unknown ids are an error.
func FilterPrompts(prompts []models.EvaluationPrompt, ids []string) ([]models.EvaluationPrompt, error) {
	if len(ids) == 0 {
		return prompts, nil
	}
	byID := make(map[string]models.EvaluationPrompt, len(prompts))
	for _, p := range prompts {
		byID[p.ID] = p
	}
	out := make([]models.EvaluationPrompt, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[models.SanitizeID(id)]
		if !ok {
			return nil, fmt.Errorf("unknown prompt id %q", id)
		}
		out = append(out, p)
	}
	return out, nil
}
