// Package analysis compares sequential and parallel runs over a record set.
// Everything here is a pure projection of the records it is given: an
// Analyzer never mutates its input and can be rebuilt at any time as more
// records arrive.
package analysis

import (
	"fmt"
	"log/slog"

	"github.com/codecrdt/modeval/internal/metrics"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/statistics"
)

// Defaults for Config.
const (
	DefaultConfidenceLevel  = 0.95
	DefaultAnomalyThreshold = 3.0
	DefaultBootstrapSeed    = 42
)

// Config holds the scalars that shape an analysis.
type Config struct {
	// ConfidenceLevel must lie strictly between 0 and 1.
	ConfidenceLevel float64
	// RemoveOutliers enables IQR trimming per metric.
	RemoveOutliers map[models.Metric]bool
	// AnomalyThreshold is the |z| above which a record is flagged.
	AnomalyThreshold float64
	// BootstrapSeed seeds the mean-difference bootstrap.
	BootstrapSeed int64
}

// DefaultConfig trims latency outliers only.
func DefaultConfig() Config {
	return Config{
		ConfidenceLevel:  DefaultConfidenceLevel,
		RemoveOutliers:   map[models.Metric]bool{models.MetricLatency: true},
		AnomalyThreshold: DefaultAnomalyThreshold,
		BootstrapSeed:    DefaultBootstrapSeed,
	}
}

// Analyzer answers statistical questions about one snapshot of records.
type Analyzer struct {
	cfg        Config
	records    models.Records
	correction statistics.Bonferroni
}

// New validates cfg and the record invariants and returns an Analyzer over a
// private copy of records.
func New(records models.Records, cfg Config) (*Analyzer, error) {
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		return nil, fmt.Errorf("confidence level %v must be between 0 and 1 (exclusive)", cfg.ConfidenceLevel)
	}
	if cfg.AnomalyThreshold <= 0 {
		cfg.AnomalyThreshold = DefaultAnomalyThreshold
	}
	if cfg.RemoveOutliers == nil {
		cfg.RemoveOutliers = map[models.Metric]bool{}
	}
	if err := records.Validate(); err != nil {
		return nil, fmt.Errorf("invalid records: %w", err)
	}

	snapshot := make(models.Records, len(records))
	copy(snapshot, records)
	return &Analyzer{
		cfg:        cfg,
		records:    snapshot,
		correction: statistics.NewBonferroni(cfg.ConfidenceLevel),
	}, nil
}

// Records returns the analyzed snapshot.
func (a *Analyzer) Records() models.Records {
	return a.records
}

// Correction returns the multiple-comparison correction in effect.
func (a *Analyzer) Correction() statistics.Bonferroni {
	return a.correction
}

// Summary describes metric over group. Outliers are removed when the config
// asks for it for this metric.
func (a *Analyzer) Summary(g metrics.Group, metric models.Metric) statistics.StatisticalSummary {
	values, missing := g.Values(a.records, metric)
	return statistics.Summarize(values, missing, a.cfg.ConfidenceLevel, a.cfg.RemoveOutliers[metric])
}

// CompareModes compares sequential against parallel for metric, across all
// tasks when task is empty. Latency samples are IQR-trimmed first when
// outlier removal is enabled for latency.
func (a *Analyzer) CompareModes(metric models.Metric, task string) statistics.ComparisonResult {
	seq, _ := metrics.ForTask(task, models.ModeSequential).Values(a.records, metric)
	par, _ := metrics.ForTask(task, models.ModeParallel).Values(a.records, metric)

	if metric == models.MetricLatency && a.cfg.RemoveOutliers[metric] {
		seq = statistics.TrimOutliersIQR(seq)
		par = statistics.TrimOutliersIQR(par)
	}

	res := statistics.CompareIndependent(metric.Label(),
		string(models.ModeSequential), string(models.ModeParallel),
		seq, par, a.correction)
	if !res.Tested() {
		slog.Debug("Comparison not tested",
			"metric", metric, "task", task, "n_sequential", len(seq), "n_parallel", len(par), "reason", res.TestUsed)
	}
	return res
}

// StatisticalPower is the post-hoc power of comparison c at the corrected
// alpha, or nil when it cannot be computed.
func (a *Analyzer) StatisticalPower(c statistics.ComparisonResult) *float64 {
	return statistics.PostHocPower(c.EffectSize, c.N1, c.N2, a.correction.Corrected)
}
