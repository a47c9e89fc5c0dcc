package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codecrdt/modeval/internal/analysis"
	"github.com/codecrdt/modeval/internal/dataset"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/projectconfig"
	"github.com/codecrdt/modeval/internal/spinner"
	"github.com/codecrdt/modeval/internal/store"
	"github.com/spf13/cobra"
)

// configDir is where the .modeval.yaml lookup starts.
var configDir = "."

func loadConfig() (*projectconfig.ProjectConfig, error) {
	return projectconfig.Load(configDir)
}

// analysisConfig maps the analysis section of the project config onto
// analysis.Config. Metric names in remove_outliers may be field names or
// labels.
func analysisConfig(pc *projectconfig.ProjectConfig) (analysis.Config, error) {
	cfg := analysis.DefaultConfig()
	cfg.ConfidenceLevel = pc.Analysis.ConfidenceLevel
	cfg.AnomalyThreshold = pc.Analysis.AnomalyThreshold
	cfg.BootstrapSeed = pc.SeedValue()
	cfg.RemoveOutliers = make(map[models.Metric]bool, len(pc.Analysis.RemoveOutliers))
	for name, on := range pc.Analysis.RemoveOutliers {
		m, err := models.ParseMetric(name)
		if err != nil {
			return cfg, fmt.Errorf("analysis.remove_outliers: %w", err)
		}
		cfg.RemoveOutliers[m] = on
	}
	return cfg, nil
}

// loadRecords reads records from a run directory or a CSV export.
func loadRecords(path string) (models.Records, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	switch {
	case info.IsDir():
		return store.LoadDir(path)
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		return dataset.LoadRecordsCSV(path)
	}
	return nil, fmt.Errorf("%s: expected a results directory or a .csv file", path)
}

// analyzeRecords loads path and builds an analyzer over it. A spinner is
// shown on stderr while this runs on a terminal.
func analyzeRecords(cmd *cobra.Command, path string) (*analysis.Analyzer, error) {
	pc, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg, err := analysisConfig(pc)
	if err != nil {
		return nil, err
	}

	var spin *spinner.Spinner
	if isTerminal(cmd.ErrOrStderr()) {
		spin = spinner.Start(cmd.ErrOrStderr(), "Loading records...")
		defer spin.Stop()
	}

	records, err := loadRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records found in %s", path)
	}
	if spin != nil {
		spin.Update(fmt.Sprintf("Analyzing %d records...", len(records)))
	}
	return analysis.New(records, cfg)
}

// buildReport runs the full analysis and stamps the generation time.
func buildReport(a *analysis.Analyzer) *analysis.Report {
	r := a.BuildReport()
	r.GeneratedAt = time.Now().UTC()
	return r
}

// withOutput calls write with the file at path, or with the command's stdout
// when path is empty.
func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}
