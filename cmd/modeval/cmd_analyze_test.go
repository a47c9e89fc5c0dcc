package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codecrdt/modeval/internal/dataset"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/projectconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_TableFromCSV(t *testing.T) {
	isolateConfig(t)
	csvPath := writeRecordsCSV(t, opposingRecords())

	out, err := runCLI(t, "analyze", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Evaluations: 20  Tasks: 2")
	assert.Contains(t, out, "Pooled d_z")
	assert.Contains(t, out, "INVALID")
}

func TestAnalyze_JSONFromDirectory(t *testing.T) {
	isolateConfig(t)
	dir := writeRecordsDir(t, opposingRecords())
	reportPath := filepath.Join(t.TempDir(), "out", "report.json")

	_, err := runCLI(t, "analyze", dir, "--format", "json", "--out", reportPath)
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.NotEmpty(t, report["generated_at"])
	overall := report["overall"].(map[string]any)
	assert.Equal(t, 20.0, overall["total_evaluations"])
}

func TestAnalyze_Formats(t *testing.T) {
	isolateConfig(t)
	csvPath := writeRecordsCSV(t, opposingRecords())

	tests := []struct {
		format string
		want   string
	}{
		{"markdown", "> **Warning:** I² ="},
		{"md", "# Mode Evaluation Report"},
		{"html", "<title>Mode Evaluation Report</title>"},
		{"yaml", "statistical_tests:"},
		{"junit", `type="HeterogeneityGate"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := runCLI(t, "analyze", csvPath, "--format", tt.format)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestAnalyze_FailOnInvalidPooling(t *testing.T) {
	isolateConfig(t)
	csvPath := writeRecordsCSV(t, opposingRecords())

	_, err := runCLI(t, "analyze", csvPath, "--fail-on-invalid-pooling")
	require.Error(t, err)
	var gateErr *GateFailureError
	require.True(t, errors.As(err, &gateErr))
	assert.Equal(t, []string{"overall_score"}, gateErr.Metrics)
	assert.Equal(t, ExitGateFailed, exitCode(err))
}

func TestAnalyze_ExportCSVAndInterpret(t *testing.T) {
	isolateConfig(t)
	dir := writeRecordsDir(t, opposingRecords())
	exportPath := filepath.Join(t.TempDir(), "export.csv")

	out, err := runCLI(t, "analyze", dir, "--export-csv", exportPath, "--interpret")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Interpretation ===")
	assert.Contains(t, out, "✗ overall_score")

	records, err := dataset.LoadRecordsCSV(exportPath)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

func TestAnalyze_Errors(t *testing.T) {
	isolateConfig(t)
	csvPath := writeRecordsCSV(t, opposingRecords())
	txt := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown format", []string{"analyze", csvPath, "--format", "pdf"}, "unknown format"},
		{"missing path", []string{"analyze", filepath.Join(t.TempDir(), "nope")}, "reading results"},
		{"wrong file type", []string{"analyze", txt}, "expected a results directory or a .csv file"},
		{"empty directory", []string{"analyze", t.TempDir()}, "no record files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnalysisConfig(t *testing.T) {
	pc := projectconfig.New()
	pc.Analysis.ConfidenceLevel = 0.9
	pc.Analysis.RemoveOutliers = map[string]bool{"code_quality": true, "response_time": false}

	cfg, err := analysisConfig(pc)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.ConfidenceLevel)
	assert.Equal(t, int64(projectconfig.DefaultSeed), cfg.BootstrapSeed)
	assert.True(t, cfg.RemoveOutliers[models.MetricCodeQuality])
	assert.False(t, cfg.RemoveOutliers[models.MetricLatency])

	pc.Analysis.RemoveOutliers = map[string]bool{"tokens": true}
	_, err = analysisConfig(pc)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "remove_outliers"))
}

func TestAnalyze_ConfigConfidenceLevel(t *testing.T) {
	dir := isolateConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".modeval.yaml"), []byte("analysis:\n  confidence_level: 0.9\n"), 0o644))
	csvPath := writeRecordsCSV(t, opposingRecords())

	out, err := runCLI(t, "analyze", csvPath, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "confidence_level: 0.9\n")
}
