package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/codecrdt/modeval/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(task string, mode models.Mode, run int) *models.MeasurementRecord {
	r := &models.MeasurementRecord{
		TaskID:          task,
		TaskName:        "Task " + task,
		Mode:            mode,
		RunNumber:       run,
		Timestamp:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ResponseTime:    models.Float(12.5),
		ResponseContent: "<html>app</html>",
		OverallScore:    models.Float(81),
		CodeQuality:     models.Float(80),
	}
	r.DeriveSuccess()
	return r
}

func TestNewRun_CreatesLayout(t *testing.T) {
	base := t.TempDir()
	s, err := NewRun(base, time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "evaluation_20260301_140509"), s.Dir())
	info, err := os.Stat(filepath.Join(s.Dir(), ResultsDir))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveRecord_RoundTrip(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.SaveRecord(sampleRecord("todo app", models.ModeParallel, 3)))

	path := filepath.Join(s.Dir(), ResultsDir, "todo_app_parallel_run003.json")
	require.FileExists(t, path)

	records, err := LoadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "todo app", records[0].TaskID)
	assert.Equal(t, "<html>app</html>", records[0].ResponseContent)
	assert.Nil(t, records[0].Architecture)
	require.NotNil(t, records[0].OverallScore)
	assert.Equal(t, 81.0, *records[0].OverallScore)
}

func TestSaveRecord_WithoutRawResponses(t *testing.T) {
	s := New(t.TempDir())
	s.SaveRawResponses = false
	r := sampleRecord("todo", models.ModeSequential, 1)
	require.NoError(t, s.SaveRecord(r))

	records, err := LoadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, records[0].ResponseContent)
	assert.NotEmpty(t, r.ResponseContent, "caller's record is untouched")
}

func TestSaveRecord_Duplicate(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.SaveRecord(sampleRecord("todo", models.ModeSequential, 1)))
	err := s.SaveRecord(sampleRecord("todo", models.ModeSequential, 1))
	require.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestSaveRecord_Concurrent(t *testing.T) {
	s := New(t.TempDir())
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(run int) {
			defer wg.Done()
			assert.NoError(t, s.SaveRecord(sampleRecord("todo", models.ModeParallel, run)))
		}(i)
	}
	wg.Wait()

	records, err := LoadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, records, 20)
	for i, r := range records {
		assert.Equal(t, i+1, r.RunNumber, "sorted by run")
	}
}

func TestCheckpoint_RoundTrip(t *testing.T) {
	s := New(t.TempDir())
	records := models.Records{
		*sampleRecord("b", models.ModeParallel, 1),
		*sampleRecord("a", models.ModeSequential, 2),
	}
	require.NoError(t, s.WriteCheckpoint(records))
	require.FileExists(t, filepath.Join(s.Dir(), CheckpointFile))

	got, err := ReadCheckpoint(s.Dir())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].TaskID)

	// no record files: LoadDir falls back to the checkpoint and sorts
	loaded, err := LoadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a", loaded[0].TaskID)

	// overwrite keeps only the latest snapshot
	require.NoError(t, s.WriteCheckpoint(records[:1]))
	got, err = ReadCheckpoint(s.Dir())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLoadDir_RejectsSchemaViolations(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ResultsDir), 0755))
	bad := `{"prompt_id": "x", "mode": "hybrid", "run_number": 1}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ResultsDir, "x.json"), []byte(bad), 0644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record schema")
}

func TestLoadDir_RejectsDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(sampleRecord("todo", models.ModeParallel, 1))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		name := fmt.Sprintf("copy%d.json", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}

	_, err = LoadDir(dir)
	require.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
}

func TestWriteEnvironment(t *testing.T) {
	s := New(t.TempDir())
	info := CurrentEnvironment(time.Now())
	info.Seed = 42
	info.Engine = "mock"
	require.NoError(t, s.WriteEnvironment(info))

	data, err := os.ReadFile(filepath.Join(s.Dir(), EnvironmentFile))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(42), got["random_seed"])
	assert.NotEmpty(t, got["go_version"])
}
