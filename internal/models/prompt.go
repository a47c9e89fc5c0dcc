package models

import "strings"

// PromptCategory groups evaluation prompts by kind.
type PromptCategory string

const (
	CategorySimple       PromptCategory = "simple"
	CategoryIntermediate PromptCategory = "intermediate"
	CategoryComplex      PromptCategory = "complex"
	CategoryGame         PromptCategory = "game"
	CategoryProductivity PromptCategory = "productivity"
	CategoryCreative     PromptCategory = "creative"
)

// EvaluationPrompt is one task evaluated under both modes.
type EvaluationPrompt struct {
	ID                 string         `yaml:"id" json:"id" validate:"required"`
	Name               string         `yaml:"name" json:"name" validate:"required"`
	Category           PromptCategory `yaml:"category" json:"category" validate:"required,oneof=simple intermediate complex game productivity creative"`
	Description        string         `yaml:"description" json:"description"`
	Prompt             string         `yaml:"prompt" json:"prompt" validate:"required"`
	ExpectedComponents []string       `yaml:"expected_components,omitempty" json:"expected_components,omitempty"`
	ComplexityScore    float64        `yaml:"complexity_score" json:"complexity_score" validate:"gte=0,lte=10"`
	Tags               []string       `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// SanitizeID makes a prompt id safe to use in file names.
func SanitizeID(id string) string {
	return strings.NewReplacer(" ", "_", "/", "_").Replace(id)
}
