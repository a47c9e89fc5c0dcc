// Package projectconfig provides the ProjectConfig struct and loader for
// .modeval.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up from the working
// directory.
const FileName = ".modeval.yaml"

// Default values for project configuration. These are the single source of
// truth; New() references them and no other code should duplicate them.
const (
	DefaultPromptsFile = "config/prompts.yaml"
	DefaultResultsDir  = "results/"

	DefaultEngine                = "http"
	DefaultBackendURL            = "http://localhost:8000"
	DefaultRunsPerPrompt         = 5
	DefaultMaxConcurrentRequests = 3
	DefaultRequestTimeoutSec     = 300
	DefaultPollBudgetSec         = 300
	DefaultRequestsPerSecond     = 0
	DefaultSeed                  = 42
	DefaultCheckpointEvery       = 10

	DefaultConfidenceLevel  = 0.95
	DefaultAnomalyThreshold = 3.0
)

// Engine names accepted in collection.engine.
const (
	EngineHTTP = "http"
	EngineMock = "mock"
)

// PathsConfig holds file and directory locations.
type PathsConfig struct {
	Prompts string `yaml:"prompts,omitempty" validate:"required"`
	Results string `yaml:"results,omitempty" validate:"required"`
}

// CollectionConfig controls how measurements are gathered from the backend.
type CollectionConfig struct {
	Engine                string  `yaml:"engine,omitempty" validate:"oneof=http mock"`
	BackendURL            string  `yaml:"backend_url,omitempty" validate:"omitempty,url"`
	RunsPerPrompt         int     `yaml:"runs_per_prompt,omitempty" validate:"gte=1"`
	MaxConcurrentRequests int     `yaml:"max_concurrent_requests,omitempty" validate:"gte=1"`
	RequestTimeoutSec     int     `yaml:"request_timeout_sec,omitempty" validate:"gte=1"`
	PollBudgetSec         int     `yaml:"poll_budget_sec,omitempty" validate:"gte=1"`
	RequestsPerSecond     float64 `yaml:"requests_per_second,omitempty" validate:"gte=0"`
	Seed                  *int64  `yaml:"seed,omitempty"`
	CheckpointEvery       int     `yaml:"checkpoint_every,omitempty" validate:"gte=1"`
	SaveRawResponses      *bool   `yaml:"save_raw_responses,omitempty"`
}

// AnalysisConfig holds the statistical settings.
type AnalysisConfig struct {
	ConfidenceLevel  float64         `yaml:"confidence_level,omitempty" validate:"gt=0,lt=1"`
	RemoveOutliers   map[string]bool `yaml:"remove_outliers,omitempty"`
	AnomalyThreshold float64         `yaml:"anomaly_threshold,omitempty" validate:"gt=0"`
}

// ProjectConfig is the top-level configuration loaded from .modeval.yaml.
type ProjectConfig struct {
	Paths      PathsConfig      `yaml:"paths,omitempty"`
	Collection CollectionConfig `yaml:"collection,omitempty"`
	Analysis   AnalysisConfig   `yaml:"analysis,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Prompts: DefaultPromptsFile,
			Results: DefaultResultsDir,
		},
		Collection: CollectionConfig{
			Engine:                DefaultEngine,
			BackendURL:            DefaultBackendURL,
			RunsPerPrompt:         DefaultRunsPerPrompt,
			MaxConcurrentRequests: DefaultMaxConcurrentRequests,
			RequestTimeoutSec:     DefaultRequestTimeoutSec,
			PollBudgetSec:         DefaultPollBudgetSec,
			RequestsPerSecond:     DefaultRequestsPerSecond,
			Seed:                  int64Ptr(DefaultSeed),
			CheckpointEvery:       DefaultCheckpointEvery,
			SaveRawResponses:      boolPtr(true),
		},
		Analysis: AnalysisConfig{
			ConfidenceLevel:  DefaultConfidenceLevel,
			RemoveOutliers:   map[string]bool{"response_time": true},
			AnomalyThreshold: DefaultAnomalyThreshold,
		},
	}
}

// Load finds .modeval.yaml by walking up from startDir (max 10 levels),
// unmarshals it, fills in missing fields with defaults and validates the
// result. If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

// Validate checks the struct tag constraints.
func (c *ProjectConfig) Validate() error {
	return validate.Struct(c)
}

// SeedValue returns the configured seed, or DefaultSeed when unset.
func (c *ProjectConfig) SeedValue() int64 {
	if c.Collection.Seed == nil {
		return DefaultSeed
	}
	return *c.Collection.Seed
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// findConfigFile walks up from dir looking for .modeval.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Prompts != "" {
		dst.Paths.Prompts = src.Paths.Prompts
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}

	// Collection
	c, s := &dst.Collection, &src.Collection
	if s.Engine != "" {
		c.Engine = s.Engine
	}
	if s.BackendURL != "" {
		c.BackendURL = s.BackendURL
	}
	if s.RunsPerPrompt != 0 {
		c.RunsPerPrompt = s.RunsPerPrompt
	}
	if s.MaxConcurrentRequests != 0 {
		c.MaxConcurrentRequests = s.MaxConcurrentRequests
	}
	if s.RequestTimeoutSec != 0 {
		c.RequestTimeoutSec = s.RequestTimeoutSec
	}
	if s.PollBudgetSec != 0 {
		c.PollBudgetSec = s.PollBudgetSec
	}
	if s.RequestsPerSecond != 0 {
		c.RequestsPerSecond = s.RequestsPerSecond
	}
	if s.Seed != nil {
		c.Seed = s.Seed
	}
	if s.CheckpointEvery != 0 {
		c.CheckpointEvery = s.CheckpointEvery
	}
	if s.SaveRawResponses != nil {
		c.SaveRawResponses = s.SaveRawResponses
	}

	// Analysis
	if src.Analysis.ConfidenceLevel != 0 {
		dst.Analysis.ConfidenceLevel = src.Analysis.ConfidenceLevel
	}
	if src.Analysis.RemoveOutliers != nil {
		dst.Analysis.RemoveOutliers = src.Analysis.RemoveOutliers
	}
	if src.Analysis.AnomalyThreshold != 0 {
		dst.Analysis.AnomalyThreshold = src.Analysis.AnomalyThreshold
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func int64Ptr(v int64) *int64 {
	return &v
}
