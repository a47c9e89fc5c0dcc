package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/codecrdt/modeval/internal/models"
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// Columns is the CSV layout of a measurement record, in write order.
var Columns = []string{
	"prompt_id", "prompt_name", "mode", "run_number", "timestamp",
	"response_time", "total_tokens", "error",
	"overall_score", "code_quality_score", "architecture_score",
	"performance_score", "accessibility_score", "success",
}

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers (column names).
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// LoadRecordsCSV reads measurement records from a CSV export. prompt_id,
// mode and run_number are required; empty metric cells are absent values.
// An empty success cell is derived from the error and overall score.
func LoadRecordsCSV(path string) (models.Records, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}

	records := make(models.Records, 0, len(rows))
	for i, row := range rows {
		r, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("csv: row %d: %w", i+2, err)
		}
		records = append(records, r)
	}
	if err := records.Validate(); err != nil {
		return nil, fmt.Errorf("csv: %s: %w", path, err)
	}
	return records.Sorted(), nil
}

func parseRow(row Row) (models.MeasurementRecord, error) {
	var r models.MeasurementRecord
	r.TaskID = row["prompt_id"]
	if r.TaskID == "" {
		return r, fmt.Errorf("missing prompt_id")
	}
	r.TaskName = row["prompt_name"]

	mode, err := models.ParseMode(row["mode"])
	if err != nil {
		return r, err
	}
	r.Mode = mode

	r.RunNumber, err = strconv.Atoi(row["run_number"])
	if err != nil {
		return r, fmt.Errorf("run_number: %w", err)
	}

	if ts := row["timestamp"]; ts != "" {
		r.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return r, fmt.Errorf("timestamp: %w", err)
		}
	}

	if tok := row["total_tokens"]; tok != "" {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return r, fmt.Errorf("total_tokens: %w", err)
		}
		r.TotalTokens = &n
	}
	if e := row["error"]; e != "" {
		r.Error = &e
	}

	for col, dst := range map[string]**float64{
		"response_time":       &r.ResponseTime,
		"overall_score":       &r.OverallScore,
		"code_quality_score":  &r.CodeQuality,
		"architecture_score":  &r.Architecture,
		"performance_score":   &r.Performance,
		"accessibility_score": &r.Accessibility,
	} {
		cell := row[col]
		if cell == "" || strings.EqualFold(cell, "nan") {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return r, fmt.Errorf("%s: %w", col, err)
		}
		*dst = &v
	}

	if s := row["success"]; s != "" {
		r.Success, err = strconv.ParseBool(s)
		if err != nil {
			return r, fmt.Errorf("success: %w", err)
		}
	} else {
		r.DeriveSuccess()
	}
	return r, nil
}

// WriteRecordsCSV writes records with the Columns header.
func WriteRecordsCSV(w io.Writer, records models.Records) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range records {
		r := &records[i]
		row := []string{
			r.TaskID, r.TaskName, string(r.Mode), strconv.Itoa(r.RunNumber), formatTime(r.Timestamp),
			formatFloat(r.ResponseTime), formatInt(r.TotalTokens), formatString(r.Error),
			formatFloat(r.OverallScore), formatFloat(r.CodeQuality), formatFloat(r.Architecture),
			formatFloat(r.Performance), formatFloat(r.Accessibility), strconv.FormatBool(r.Success),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
