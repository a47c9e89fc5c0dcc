package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codecrdt/modeval/internal/dataset"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/store"
	"github.com/stretchr/testify/require"
)

// opposingRecords builds two tasks of five paired runs whose parallel effect
// points in opposite directions, so pooling fails the heterogeneity gate.
func opposingRecords() models.Records {
	base := []float64{60, 65, 70, 75, 80}
	shift := []float64{9, 10, 10, 10, 11}
	mk := func(task string, mode models.Mode, run int, score float64) models.MeasurementRecord {
		r := models.MeasurementRecord{
			TaskID:       task,
			TaskName:     "Task " + task,
			Mode:         mode,
			RunNumber:    run,
			ResponseTime: models.Float(20 + float64(run)),
			OverallScore: models.Float(score),
		}
		r.DeriveSuccess()
		return r
	}
	var rs models.Records
	for i := range base {
		rs = append(rs,
			mk("A", models.ModeSequential, i+1, base[i]),
			mk("A", models.ModeParallel, i+1, base[i]+shift[i]),
			mk("B", models.ModeSequential, i+1, base[i]),
			mk("B", models.ModeParallel, i+1, base[i]-shift[i]),
		)
	}
	return rs
}

func writeRecordsCSV(t *testing.T, records models.Records) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, dataset.WriteRecordsCSV(f, records))
	require.NoError(t, f.Close())
	return path
}

func writeRecordsDir(t *testing.T, records models.Records) string {
	t.Helper()
	dir := t.TempDir()
	st := store.New(dir)
	for i := range records {
		require.NoError(t, st.SaveRecord(&records[i]))
	}
	return dir
}

const promptsYAML = `prompts:
  - id: todo_app
    name: Todo App
    category: simple
    prompt: Build a todo list with add and remove
    complexity_score: 2
  - id: dashboard
    name: Analytics Dashboard
    category: complex
    prompt: Build a dashboard with three charts
    complexity_score: 7
`

func writePrompts(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(promptsYAML), 0o644))
	return path
}
