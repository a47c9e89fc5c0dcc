package statistics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Heterogeneity bands for I², in percent.
const (
	HeterogeneityCaution = 50.0
	HeterogeneityExtreme = 75.0
)

// Heterogeneity levels reported alongside I².
const (
	HeterogeneityLow         = "low"
	HeterogeneitySubstantial = "substantial"
	HeterogeneityHigh        = "extreme"
	HeterogeneityNone        = "insufficient_data"
)

// TaskEffect is one task's paired effect size and the number of pairs behind
// it. A nil Effect marks a task whose effect could not be measured.
type TaskEffect struct {
	Task   string
	Effect *float64
	N      int
}

// MetaAnalysisResult is a fixed-effects pooling of per-task paired effects
// together with the heterogeneity gate that decides whether the pooled
// estimate may be reported.
type MetaAnalysisResult struct {
	Tasks          []string `json:"tasks" yaml:"tasks"`
	SkippedTasks   []string `json:"skipped_tasks" yaml:"skipped_tasks"`
	PooledEffect   float64  `json:"pooled_effect" yaml:"pooled_effect"`
	PooledSE       float64  `json:"pooled_se" yaml:"pooled_se"`
	Z              float64  `json:"z" yaml:"z"`
	PValue         float64  `json:"p_value" yaml:"p_value"`
	Q              float64  `json:"q" yaml:"q"`
	DF             int      `json:"df" yaml:"df"`
	QPValue        *float64 `json:"q_p_value" yaml:"q_p_value"`
	I2             float64  `json:"i2" yaml:"i2"`
	Heterogeneity  string   `json:"heterogeneity" yaml:"heterogeneity"`
	PoolingValid   bool     `json:"pooling_valid" yaml:"pooling_valid"`
	Interpretation string   `json:"interpretation" yaml:"interpretation"`
}

// Headline returns the pooled effect only when pooling passed the
// heterogeneity gate.
func (m MetaAnalysisResult) Headline() (float64, bool) {
	if !m.PoolingValid {
		return 0, false
	}
	return m.PooledEffect, true
}

// FixedEffects pools per-task d_z values by inverse-variance weighting with
// se_i = 1/sqrt(n_i), then measures heterogeneity with Cochran's Q and I².
// Pooling is declared invalid when I² reaches 75%. Tasks without a defined
// effect or with fewer than two pairs are listed in SkippedTasks.
func FixedEffects(effects []TaskEffect) MetaAnalysisResult {
	res := MetaAnalysisResult{Tasks: []string{}, SkippedTasks: []string{}}

	var d, w []float64
	for _, e := range effects {
		if e.Effect == nil || e.N < 2 || math.IsNaN(*e.Effect) || math.IsInf(*e.Effect, 0) {
			res.SkippedTasks = append(res.SkippedTasks, e.Task)
			continue
		}
		res.Tasks = append(res.Tasks, e.Task)
		d = append(d, *e.Effect)
		se := 1 / math.Sqrt(float64(e.N))
		w = append(w, 1/(se*se))
	}

	k := len(d)
	if k == 0 {
		res.PValue = 1
		res.Heterogeneity = HeterogeneityNone
		res.Interpretation = "no task has a measurable paired effect; nothing to pool"
		return res
	}

	sumW, sumWD := 0.0, 0.0
	for i := range d {
		sumW += w[i]
		sumWD += w[i] * d[i]
	}
	res.PooledEffect = sumWD / sumW
	res.PooledSE = math.Sqrt(1 / sumW)
	res.Z = res.PooledEffect / res.PooledSE
	res.PValue = 2 * distuv.UnitNormal.CDF(-math.Abs(res.Z))

	for i := range d {
		e := d[i] - res.PooledEffect
		res.Q += w[i] * e * e
	}
	res.DF = k - 1
	if res.DF > 0 {
		chi := distuv.ChiSquared{K: float64(res.DF)}
		qp := 1 - chi.CDF(res.Q)
		res.QPValue = &qp
	}
	if res.Q > 0 && k > 1 {
		res.I2 = math.Max(0, (res.Q-float64(res.DF))/res.Q) * 100
	}

	switch {
	case res.I2 >= HeterogeneityExtreme:
		res.Heterogeneity = HeterogeneityHigh
		res.Interpretation = "extreme heterogeneity; the pooled estimate is not meaningful, report per-task results"
	case res.I2 >= HeterogeneityCaution:
		res.Heterogeneity = HeterogeneitySubstantial
		res.PoolingValid = true
		res.Interpretation = "substantial heterogeneity; interpret the pooled estimate with caution"
	default:
		res.Heterogeneity = HeterogeneityLow
		res.PoolingValid = true
		res.Interpretation = "low heterogeneity; pooling is acceptable"
	}
	return res
}
