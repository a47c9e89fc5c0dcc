package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDirs(t *testing.T, base string) []string {
	t.Helper()
	dirs, err := filepath.Glob(filepath.Join(base, "evaluation_*"))
	require.NoError(t, err)
	return dirs
}

func TestParseModes(t *testing.T) {
	modes, err := parseModes("both")
	require.NoError(t, err)
	assert.Equal(t, models.Modes, modes)

	modes, err = parseModes("parallel")
	require.NoError(t, err)
	assert.Equal(t, []models.Mode{models.ModeParallel}, modes)

	_, err = parseModes("async")
	require.Error(t, err)
}

func TestEvaluate_MockRunWritesResults(t *testing.T) {
	isolateConfig(t)
	prompts := writePrompts(t)
	outDir := t.TempDir()

	out, err := runCLI(t, "evaluate", "--mock", "--runs", "2", "--prompts", prompts, "--output", outDir, "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Collecting 8 jobs (2 prompts × 2 modes × 2 runs) with the mock backend")
	assert.Contains(t, out, "Collected 8 records (8 successful)")

	dirs := runDirs(t, outDir)
	require.Len(t, dirs, 1)
	files, err := filepath.Glob(filepath.Join(dirs[0], store.ResultsDir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 8)

	data, err := os.ReadFile(filepath.Join(dirs[0], store.EnvironmentFile))
	require.NoError(t, err)
	var env store.EnvironmentInfo
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, int64(7), env.Seed)
	assert.Equal(t, "mock", env.Engine)
	assert.Equal(t, 2, env.RunsPerPrompt)
	assert.Equal(t, 2, env.Prompts)

	records, err := store.LoadDir(dirs[0])
	require.NoError(t, err)
	assert.Len(t, records, 8)

	checkpoint, err := store.ReadCheckpoint(dirs[0])
	require.NoError(t, err)
	assert.Len(t, checkpoint, 8)
}

func TestEvaluate_SelectsPromptsAndModes(t *testing.T) {
	isolateConfig(t)
	prompts := writePrompts(t)

	tests := []struct {
		name  string
		args  []string
		want  int
		tasks []string
	}{
		{"prompt ids", []string{"--prompt-ids", "todo_app"}, 4, []string{"todo_app"}},
		{"glob filter", []string{"--filter", "dash*"}, 4, []string{"dashboard"}},
		{"category filter", []string{"--filter", "simple"}, 4, []string{"todo_app"}},
		{"one mode", []string{"--modes", "sequential"}, 4, []string{"dashboard", "todo_app"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := t.TempDir()
			args := append([]string{"evaluate", "--mock", "--runs", "2", "--prompts", prompts, "--output", outDir}, tt.args...)
			_, err := runCLI(t, args...)
			require.NoError(t, err)

			dirs := runDirs(t, outDir)
			require.Len(t, dirs, 1)
			records, err := store.LoadDir(dirs[0])
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
			assert.Equal(t, tt.tasks, records.TaskIDs())
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	isolateConfig(t)
	prompts := writePrompts(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown prompt id", []string{"--prompt-ids", "nope"}, `unknown prompt id "nope"`},
		{"no match", []string{"--filter", "zzz*"}, "no prompts selected"},
		{"bad mode", []string{"--modes", "async"}, "unknown mode"},
		{"missing prompts file", []string{"--prompts", filepath.Join(t.TempDir(), "missing.yaml")}, "reading prompts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"evaluate", "--mock", "--prompts", prompts, "--output", t.TempDir()}, tt.args...)
			_, err := runCLI(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluate_ConfigFile(t *testing.T) {
	dir := isolateConfig(t)
	prompts := writePrompts(t)
	outDir := t.TempDir()
	cfg := "paths:\n  prompts: " + prompts + "\n  results: " + outDir + "\ncollection:\n  engine: mock\n  runs_per_prompt: 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".modeval.yaml"), []byte(cfg), 0o644))

	out, err := runCLI(t, "evaluate")
	require.NoError(t, err)
	assert.Contains(t, out, "Collected 4 records")
	assert.Len(t, runDirs(t, outDir), 1)
}
