package analysis

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/codecrdt/modeval/internal/metrics"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/statistics"
	"gonum.org/v1/gonum/stat"
)

// PerTaskResult is the paired comparison of one metric within one task.
// Differences are parallel minus sequential.
type PerTaskResult struct {
	TaskID         string   `json:"task_id" yaml:"task_id"`
	TaskName       string   `json:"task_name" yaml:"task_name"`
	N              int      `json:"n" yaml:"n"`
	SequentialMean float64  `json:"sequential_mean" yaml:"sequential_mean"`
	ParallelMean   float64  `json:"parallel_mean" yaml:"parallel_mean"`
	MeanDiff       float64  `json:"mean_diff" yaml:"mean_diff"`
	Statistic      *float64 `json:"statistic" yaml:"statistic"`
	PValue         float64  `json:"p_value" yaml:"p_value"`
	EffectSizeDz   *float64 `json:"effect_size_dz" yaml:"effect_size_dz"`
	Significant    bool     `json:"significant" yaml:"significant"`
	Warnings       []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// PairedAnalysis holds the per-task results for one metric and their
// gated fixed-effects pooling.
type PairedAnalysis struct {
	Metric string                        `json:"metric" yaml:"metric"`
	Tasks  []PerTaskResult               `json:"tasks" yaml:"tasks"`
	Meta   statistics.MetaAnalysisResult `json:"meta_analysis" yaml:"meta_analysis"`
}

// PairedTask runs the signed-rank test and d_z for one task. Sequential and
// parallel values are matched on run number; a run with a value under only
// one mode is left out with a warning.
func (a *Analyzer) PairedTask(task string, metric models.Metric) PerTaskResult {
	seq, par, unmatched := a.pairedValues(task, metric)

	res := PerTaskResult{TaskID: task, TaskName: a.records.TaskName(task), PValue: 1}

	if len(unmatched) > 0 {
		msg := fmt.Sprintf("runs without a counterpart in the other mode: %s; paired on %d runs",
			joinRuns(unmatched), len(seq))
		slog.Warn("Paired runs missing a counterpart",
			"task", task, "metric", metric, "unmatched_runs", unmatched, "pairs", len(seq))
		res.Warnings = append(res.Warnings, msg)
	}
	res.N = len(seq)
	if res.N == 0 {
		slog.Warn("No paired observations", "task", task, "metric", metric)
		res.Warnings = append(res.Warnings, "no paired observations")
		return res
	}

	diffs := make([]float64, res.N)
	for i := range diffs {
		diffs[i] = par[i] - seq[i]
	}
	res.SequentialMean = stat.Mean(seq, nil)
	res.ParallelMean = stat.Mean(par, nil)
	res.MeanDiff = stat.Mean(diffs, nil)

	w := statistics.WilcoxonSignedRank(seq, par)
	res.Statistic = &w.Statistic
	res.PValue = w.PValue
	res.Significant = w.PValue < statistics.RawAlpha

	res.EffectSizeDz = statistics.CohensDz(diffs)
	if res.EffectSizeDz == nil {
		slog.Warn("Paired effect size undefined", "task", task, "metric", metric, "pairs", res.N)
		res.Warnings = append(res.Warnings, "effect size undefined (fewer than two pairs or constant differences)")
	}
	return res
}

// pairedValues returns the values of metric for the runs of task present
// under both modes, in run order, and the run numbers present under only one.
// Run numbers are unique per (task, mode), which New enforces.
func (a *Analyzer) pairedValues(task string, metric models.Metric) (seq, par []float64, unmatched []int) {
	byRun := func(mode models.Mode) map[int]float64 {
		out := make(map[int]float64)
		for _, r := range metrics.ForTask(task, mode).Records(a.records) {
			if v, ok := r.Value(metric); ok {
				out[r.RunNumber] = v
			}
		}
		return out
	}
	seqByRun, parByRun := byRun(models.ModeSequential), byRun(models.ModeParallel)

	var runs []int
	for run := range seqByRun {
		if _, ok := parByRun[run]; ok {
			runs = append(runs, run)
		} else {
			unmatched = append(unmatched, run)
		}
	}
	for run := range parByRun {
		if _, ok := seqByRun[run]; !ok {
			unmatched = append(unmatched, run)
		}
	}
	sort.Ints(runs)
	sort.Ints(unmatched)

	seq, par = make([]float64, len(runs)), make([]float64, len(runs))
	for i, run := range runs {
		seq[i], par[i] = seqByRun[run], parByRun[run]
	}
	return seq, par, unmatched
}

func joinRuns(runs []int) string {
	parts := make([]string, len(runs))
	for i, r := range runs {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ", ")
}

// PairedByTask analyzes every task for metric and pools the per-task effects
// with the heterogeneity gate.
func (a *Analyzer) PairedByTask(metric models.Metric) PairedAnalysis {
	pa := PairedAnalysis{Metric: metric.Label(), Tasks: []PerTaskResult{}}
	var effects []statistics.TaskEffect
	for _, task := range a.records.TaskIDs() {
		r := a.PairedTask(task, metric)
		pa.Tasks = append(pa.Tasks, r)
		effects = append(effects, statistics.TaskEffect{Task: task, Effect: r.EffectSizeDz, N: r.N})
	}

	pa.Meta = statistics.FixedEffects(effects)
	for _, skipped := range pa.Meta.SkippedTasks {
		slog.Warn("Task excluded from meta-analysis", "task", skipped, "metric", metric)
	}
	if !pa.Meta.PoolingValid && len(pa.Meta.Tasks) > 0 {
		slog.Warn("Pooling not valid, report per-task results",
			"metric", metric, "i2", pa.Meta.I2, "heterogeneity", pa.Meta.Heterogeneity)
	}
	return pa
}
