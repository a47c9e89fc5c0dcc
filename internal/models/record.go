package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Mode is the agent execution mode a run was collected under.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// Modes lists both modes in comparison order (baseline first).
var Modes = []Mode{ModeSequential, ModeParallel}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSequential, ModeParallel:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q: must be sequential or parallel", s)
}

// Metric names one numeric measurement on a record. The values match the
// JSON field names used in result files.
type Metric string

const (
	MetricLatency       Metric = "response_time"
	MetricOverallScore  Metric = "overall_score"
	MetricCodeQuality   Metric = "code_quality_score"
	MetricArchitecture  Metric = "architecture_score"
	MetricPerformance   Metric = "performance_score"
	MetricAccessibility Metric = "accessibility_score"
)

// AllMetrics are the metrics compared between modes, in report order.
var AllMetrics = []Metric{
	MetricLatency,
	MetricOverallScore,
	MetricCodeQuality,
	MetricArchitecture,
	MetricPerformance,
	MetricAccessibility,
}

// AnomalyMetrics are the metrics scanned for extreme records.
var AnomalyMetrics = []Metric{MetricLatency, MetricOverallScore}

// ParseMetric accepts either the field name or the short label.
func ParseMetric(s string) (Metric, error) {
	for _, m := range AllMetrics {
		if string(m) == s || m.Label() == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Label is the short display name used in reports.
func (m Metric) Label() string {
	switch m {
	case MetricCodeQuality:
		return "code_quality"
	case MetricArchitecture:
		return "architecture"
	case MetricPerformance:
		return "performance"
	case MetricAccessibility:
		return "accessibility"
	}
	return string(m)
}

// MeasurementRecord is the result of one evaluation run. A nil metric means
// the run did not produce that value (usually because it failed before
// scoring).
type MeasurementRecord struct {
	TaskID          string         `json:"prompt_id"`
	TaskName        string         `json:"prompt_name"`
	Mode            Mode           `json:"mode"`
	RunNumber       int            `json:"run_number"`
	Timestamp       time.Time      `json:"timestamp"`
	ResponseTime    *float64       `json:"response_time"`
	TotalTokens     *int           `json:"total_tokens"`
	ResponseContent string         `json:"response_content"`
	Error           *string        `json:"error"`
	OverallScore    *float64       `json:"overall_score"`
	CodeQuality     *float64       `json:"code_quality_score"`
	Architecture    *float64       `json:"architecture_score"`
	Performance     *float64       `json:"performance_score"`
	Accessibility   *float64       `json:"accessibility_score"`
	Success         bool           `json:"success"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// RecordKey identifies a record within a store.
type RecordKey struct {
	TaskID    string
	Mode      Mode
	RunNumber int
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s/%s/run%03d", k.TaskID, k.Mode, k.RunNumber)
}

// Key returns the (task, mode, run) identity of the record.
func (r *MeasurementRecord) Key() RecordKey {
	return RecordKey{TaskID: r.TaskID, Mode: r.Mode, RunNumber: r.RunNumber}
}

// HasError reports whether the run recorded an error.
func (r *MeasurementRecord) HasError() bool {
	return r.Error != nil && *r.Error != ""
}

// DeriveSuccess sets Success from the error and overall score fields.
func (r *MeasurementRecord) DeriveSuccess() {
	r.Success = !r.HasError() && r.OverallScore != nil
}

// Value returns the metric value and whether it is present. NaN and
// infinite values are treated as absent.
func (r *MeasurementRecord) Value(m Metric) (float64, bool) {
	var p *float64
	switch m {
	case MetricLatency:
		p = r.ResponseTime
	case MetricOverallScore:
		p = r.OverallScore
	case MetricCodeQuality:
		p = r.CodeQuality
	case MetricArchitecture:
		p = r.Architecture
	case MetricPerformance:
		p = r.Performance
	case MetricAccessibility:
		p = r.Accessibility
	}
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

// Records is an ordered, read-only collection of measurement records.
type Records []MeasurementRecord

// Validate checks the (task, mode, run) uniqueness invariant and that every
// record names a known mode.
func (rs Records) Validate() error {
	seen := make(map[RecordKey]bool, len(rs))
	for i := range rs {
		if _, err := ParseMode(string(rs[i].Mode)); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		k := rs[i].Key()
		if seen[k] {
			return fmt.Errorf("duplicate record %s", k)
		}
		seen[k] = true
	}
	return nil
}

// TaskIDs returns the distinct task ids in sorted order.
func (rs Records) TaskIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for i := range rs {
		if !seen[rs[i].TaskID] {
			seen[rs[i].TaskID] = true
			ids = append(ids, rs[i].TaskID)
		}
	}
	sort.Strings(ids)
	return ids
}

// TaskName returns the display name of the first record for the task.
func (rs Records) TaskName(taskID string) string {
	for i := range rs {
		if rs[i].TaskID == taskID && rs[i].TaskName != "" {
			return rs[i].TaskName
		}
	}
	return taskID
}

// Sorted returns a copy ordered by task, mode (sequential first), then run.
func (rs Records) Sorted() Records {
	out := make(Records, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		if a.Mode != b.Mode {
			return a.Mode == ModeSequential
		}
		return a.RunNumber < b.RunNumber
	})
	return out
}

// Float returns a pointer to v, for building records.
func Float(v float64) *float64 {
	return &v
}
