package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/codecrdt/modeval/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadCSV(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		wantRows int
		wantCols int
		wantErr  string
	}{
		{
			name:     "happy path 2 rows 3 columns",
			csv:      "prompt_id,mode,run_number\ntodo,sequential,1\ntodo,parallel,1\n",
			wantRows: 2,
			wantCols: 3,
		},
		{
			name:     "empty CSV headers only",
			csv:      "prompt_id,mode,run_number\n",
			wantRows: 0,
		},
		{
			name:    "mismatched column count",
			csv:     "prompt_id,mode\nok,parallel\nbad\n",
			wantErr: "wrong number of fields",
		},
		{
			name:    "no header row",
			csv:     "",
			wantErr: "no header row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeCSV(t, dir, "test.csv", tt.csv)

			rows, err := LoadCSV(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
			if tt.wantRows > 0 {
				assert.Len(t, rows[0], tt.wantCols)
			}
		})
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadCSV("/nonexistent/path/data.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: open")
}

func TestLoadRecordsCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "records.csv",
		"prompt_id,prompt_name,mode,run_number,response_time,error,overall_score,code_quality_score,success\n"+
			"todo,Todo App,parallel,1,10.5,,82,80,\n"+
			"todo,Todo App,sequential,2,300,timeout,,,\n"+
			"todo,Todo App,sequential,1,20,,75,NaN,true\n")

	records, err := LoadRecordsCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// sorted: sequential runs first
	first := records[0]
	assert.Equal(t, models.ModeSequential, first.Mode)
	assert.Equal(t, 1, first.RunNumber)
	require.NotNil(t, first.OverallScore)
	assert.Equal(t, 75.0, *first.OverallScore)
	assert.Nil(t, first.CodeQuality, "NaN cell is absent")
	assert.True(t, first.Success)

	failed := records[1]
	assert.True(t, failed.HasError())
	assert.Nil(t, failed.OverallScore)
	assert.False(t, failed.Success, "derived from the error")

	par := records[2]
	assert.True(t, par.Success, "derived from the score")
	require.NotNil(t, par.ResponseTime)
	assert.Equal(t, 10.5, *par.ResponseTime)
}

func TestLoadRecordsCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{"missing prompt id", "prompt_id,mode,run_number\n,parallel,1\n", "missing prompt_id"},
		{"bad mode", "prompt_id,mode,run_number\ntodo,hybrid,1\n", "unknown mode"},
		{"bad run", "prompt_id,mode,run_number\ntodo,parallel,x\n", "run_number"},
		{"bad score", "prompt_id,mode,run_number,overall_score\ntodo,parallel,1,high\n", "overall_score"},
		{"duplicate", "prompt_id,mode,run_number\ntodo,parallel,1\ntodo,parallel,1\n", "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, t.TempDir(), "records.csv", tt.csv)
			_, err := LoadRecordsCSV(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteRecordsCSV_RoundTrip(t *testing.T) {
	msg := "backend unavailable"
	in := models.Records{
		{TaskID: "chat", TaskName: "Chat", Mode: models.ModeSequential, RunNumber: 1, OverallScore: models.Float(70.25), Success: true},
		{TaskID: "chat", TaskName: "Chat", Mode: models.ModeParallel, RunNumber: 1, Error: &msg},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecordsCSV(&buf, in))

	path := writeCSV(t, t.TempDir(), "out.csv", buf.String())
	out, err := LoadRecordsCSV(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].OverallScore)
	assert.Equal(t, 70.25, *out[0].OverallScore)
	assert.True(t, out[1].HasError())
	assert.Nil(t, out[1].OverallScore)
}
