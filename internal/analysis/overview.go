package analysis

import (
	"github.com/codecrdt/modeval/internal/metrics"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/statistics"
	"gonum.org/v1/gonum/stat"
)

// ModeStatistics aggregates one mode across every task.
type ModeStatistics struct {
	Count       int                `json:"count" yaml:"count"`
	SuccessRate float64            `json:"success_rate" yaml:"success_rate"`
	ErrorRate   float64            `json:"error_rate" yaml:"error_rate"`
	Averages    map[string]float64 `json:"averages" yaml:"averages"`
}

// OverallStatistics covers the whole record set.
type OverallStatistics struct {
	TotalEvaluations int                                    `json:"total_evaluations" yaml:"total_evaluations"`
	UniqueTasks      int                                    `json:"unique_tasks" yaml:"unique_tasks"`
	SuccessRate      float64                                `json:"success_rate" yaml:"success_rate"`
	ErrorRate        float64                                `json:"error_rate" yaml:"error_rate"`
	ByMode           map[models.Mode]ModeStatistics         `json:"by_mode" yaml:"by_mode"`
	Comparisons      map[string]statistics.ComparisonResult `json:"comparisons" yaml:"comparisons"`
}

// ModePerformance describes one task under one mode.
type ModePerformance struct {
	Count       int                                      `json:"count" yaml:"count"`
	SuccessRate float64                                  `json:"success_rate" yaml:"success_rate"`
	ErrorRate   float64                                  `json:"error_rate" yaml:"error_rate"`
	Metrics     map[string]statistics.StatisticalSummary `json:"metrics" yaml:"metrics"`
}

// TaskPerformance describes one task under both modes.
type TaskPerformance struct {
	TaskID      string                                 `json:"task_id" yaml:"task_id"`
	Name        string                                 `json:"name" yaml:"name"`
	Modes       map[models.Mode]ModePerformance        `json:"modes" yaml:"modes"`
	Comparisons map[string]statistics.ComparisonResult `json:"comparisons" yaml:"comparisons"`
}

// OverallStatistics summarizes all records and compares the modes for every
// metric.
func (a *Analyzer) OverallStatistics() OverallStatistics {
	all := metrics.Group{}
	o := OverallStatistics{
		TotalEvaluations: len(a.records),
		UniqueTasks:      len(a.records.TaskIDs()),
		SuccessRate:      all.SuccessRate(a.records),
		ErrorRate:        all.ErrorRate(a.records),
		ByMode:           make(map[models.Mode]ModeStatistics, len(models.Modes)),
		Comparisons:      make(map[string]statistics.ComparisonResult, len(models.AllMetrics)),
	}

	for _, mode := range models.Modes {
		g := metrics.ForMode(mode)
		ms := ModeStatistics{
			Count:       g.Total(a.records),
			SuccessRate: g.SuccessRate(a.records),
			ErrorRate:   g.ErrorRate(a.records),
			Averages:    map[string]float64{},
		}
		for _, m := range models.AllMetrics {
			if values, _ := g.Values(a.records, m); len(values) > 0 {
				ms.Averages[m.Label()] = stat.Mean(values, nil)
			}
		}
		o.ByMode[mode] = ms
	}

	for _, m := range models.AllMetrics {
		o.Comparisons[m.Label()] = a.CompareModes(m, "")
	}
	return o
}

// TaskPerformance builds per-task summaries and mode comparisons keyed by
// task id.
func (a *Analyzer) TaskPerformance() map[string]TaskPerformance {
	out := make(map[string]TaskPerformance)
	for _, task := range a.records.TaskIDs() {
		tp := TaskPerformance{
			TaskID:      task,
			Name:        a.records.TaskName(task),
			Modes:       make(map[models.Mode]ModePerformance, len(models.Modes)),
			Comparisons: make(map[string]statistics.ComparisonResult, len(models.AllMetrics)),
		}
		for _, mode := range models.Modes {
			g := metrics.ForTask(task, mode)
			mp := ModePerformance{
				Count:       g.Total(a.records),
				SuccessRate: g.SuccessRate(a.records),
				ErrorRate:   g.ErrorRate(a.records),
				Metrics:     make(map[string]statistics.StatisticalSummary, len(models.AllMetrics)),
			}
			for _, m := range models.AllMetrics {
				mp.Metrics[m.Label()] = a.Summary(g, m)
			}
			tp.Modes[mode] = mp
		}
		for _, m := range models.AllMetrics {
			tp.Comparisons[m.Label()] = a.CompareModes(m, task)
		}
		out[task] = tp
	}
	return out
}
