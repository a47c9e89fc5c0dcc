package orchestration

import (
	"fmt"
	"path/filepath"

	"github.com/codecrdt/modeval/internal/models"
)

// FilterPrompts returns the subset of prompts whose Name, ID or category
// matches at least one of the given glob patterns. An empty patterns slice
// returns all prompts unchanged.
func FilterPrompts(prompts []models.EvaluationPrompt, patterns []string) ([]models.EvaluationPrompt, error) {
	if len(patterns) == 0 {
		return prompts, nil
	}

	var matched []models.EvaluationPrompt
	for _, p := range prompts {
		ok, err := matchesAny(p, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// matchesAny reports whether a prompt's Name, ID or category matches any pattern.
func matchesAny(p models.EvaluationPrompt, patterns []string) (bool, error) {
	for _, pat := range patterns {
		for _, candidate := range []string{p.Name, p.ID, string(p.Category)} {
			ok, err := filepath.Match(pat, candidate)
			if err != nil {
				return false, fmt.Errorf("invalid prompt filter pattern %q: %w", pat, err)
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}
