package analysis

import (
	"time"

	"github.com/codecrdt/modeval/internal/metrics"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/statistics"
)

// PowerInsufficientData marks a power figure that could not be computed.
const PowerInsufficientData = "insufficient_data"

// TestSummary is the headline view of one mode comparison.
type TestSummary struct {
	Metric               string   `json:"metric" yaml:"metric"`
	Test                 string   `json:"test" yaml:"test"`
	PValue               float64  `json:"p_value" yaml:"p_value"`
	Significant          bool     `json:"significant" yaml:"significant"`
	EffectSize           *float64 `json:"effect_size" yaml:"effect_size"`
	EffectInterpretation string   `json:"effect_interpretation" yaml:"effect_interpretation"`
	Power                *float64 `json:"power" yaml:"power"`
	PowerStatus          string   `json:"power_status" yaml:"power_status"`
}

// StatisticalTests groups the corrected headline tests.
type StatisticalTests struct {
	Correction statistics.Bonferroni `json:"correction" yaml:"correction"`
	Tests      []TestSummary         `json:"tests" yaml:"tests"`
}

// Report is the complete analysis of a record set.
type Report struct {
	GeneratedAt      time.Time                     `json:"generated_at" yaml:"generated_at"`
	ConfidenceLevel  float64                       `json:"confidence_level" yaml:"confidence_level"`
	Overall          OverallStatistics             `json:"overall" yaml:"overall"`
	Tasks            map[string]TaskPerformance    `json:"tasks" yaml:"tasks"`
	StatisticalTests StatisticalTests              `json:"statistical_tests" yaml:"statistical_tests"`
	Paired           []PairedAnalysis              `json:"paired" yaml:"paired"`
	Anomalies        []Anomaly                     `json:"anomalies" yaml:"anomalies"`
	Bootstrap        statistics.ConfidenceInterval `json:"bootstrap_overall_score" yaml:"bootstrap_overall_score"`
}

// InvalidPooling lists the paired metrics whose pooled estimate failed the
// heterogeneity gate.
func (r *Report) InvalidPooling() []string {
	var out []string
	for _, p := range r.Paired {
		if len(p.Meta.Tasks) > 0 && !p.Meta.PoolingValid {
			out = append(out, p.Metric)
		}
	}
	return out
}

// headlineMetrics get a power figure and an effect interpretation.
var headlineMetrics = []models.Metric{models.MetricOverallScore, models.MetricLatency}

// Summarize turns a comparison into a headline test summary, including
// post-hoc power.
func (a *Analyzer) Summarize(c statistics.ComparisonResult) TestSummary {
	ts := TestSummary{
		Metric:               c.Metric,
		Test:                 c.TestUsed,
		PValue:               c.PValue,
		Significant:          c.Significant,
		EffectSize:           c.EffectSize,
		EffectInterpretation: statistics.InterpretEffectSize(c.EffectSize),
		Power:                a.StatisticalPower(c),
		PowerStatus:          "computed",
	}
	if ts.Power == nil {
		ts.PowerStatus = PowerInsufficientData
	}
	return ts
}

// BuildReport runs every analysis over the snapshot. GeneratedAt is left for
// the caller to stamp.
func (a *Analyzer) BuildReport() *Report {
	r := &Report{
		ConfidenceLevel: a.cfg.ConfidenceLevel,
		Overall:         a.OverallStatistics(),
		Tasks:           a.TaskPerformance(),
		StatisticalTests: StatisticalTests{
			Correction: a.correction,
			Tests:      []TestSummary{},
		},
		Paired:    []PairedAnalysis{},
		Anomalies: a.DetectAnomalies(),
	}

	for _, m := range headlineMetrics {
		r.StatisticalTests.Tests = append(r.StatisticalTests.Tests, a.Summarize(r.Overall.Comparisons[m.Label()]))
	}
	for _, m := range models.AllMetrics {
		r.Paired = append(r.Paired, a.PairedByTask(m))
	}

	seq, _ := metrics.ForMode(models.ModeSequential).Values(a.records, models.MetricOverallScore)
	par, _ := metrics.ForMode(models.ModeParallel).Values(a.records, models.MetricOverallScore)
	r.Bootstrap = statistics.BootstrapMeanDiff(seq, par, a.cfg.ConfidenceLevel, a.cfg.BootstrapSeed)
	return r
}
