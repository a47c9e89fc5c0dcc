package statistics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Names of the tests CompareIndependent can select.
const (
	NameNone         = "none"
	NameInsufficient = "none (insufficient samples)"
	NameStudentT     = "t-test"
	NameWelchT       = "welch-t-test"
	NameMannWhitneyU = "mann-whitney-u"
)

// parametricMinSamples is the combined size from which t-tests are trusted
// for normal-looking data.
const parametricMinSamples = 30

// ComparisonResult compares one metric between two independent groups.
// MeanDiff and EffectSize are oriented as second group minus first.
type ComparisonResult struct {
	Metric         string   `json:"metric" yaml:"metric"`
	Group1         string   `json:"group1" yaml:"group1"`
	Group2         string   `json:"group2" yaml:"group2"`
	Mean1          float64  `json:"mean1" yaml:"mean1"`
	Mean2          float64  `json:"mean2" yaml:"mean2"`
	N1             int      `json:"n1" yaml:"n1"`
	N2             int      `json:"n2" yaml:"n2"`
	MeanDiff       float64  `json:"mean_diff" yaml:"mean_diff"`
	RelativeChange float64  `json:"relative_change_pct" yaml:"relative_change_pct"`
	Statistic      *float64 `json:"statistic" yaml:"statistic"`
	PValue         float64  `json:"p_value" yaml:"p_value"`
	EffectSize     *float64 `json:"effect_size" yaml:"effect_size"`
	Significant    bool     `json:"significant" yaml:"significant"`
	CorrectedAlpha float64  `json:"corrected_alpha" yaml:"corrected_alpha"`
	TestUsed       string   `json:"test_used" yaml:"test_used"`
}

// Tested reports whether a hypothesis test actually ran.
func (r ComparisonResult) Tested() bool {
	return r.TestUsed != NameNone && r.TestUsed != NameInsufficient
}

// SelectTest picks the two-sample test for a and b: t-tests when both samples
// look normal and there are enough of them, Mann-Whitney U otherwise.
func SelectTest(a, b []float64) string {
	if len(a) < 2 && len(b) < 2 {
		return NameInsufficient
	}
	if len(a)+len(b) >= parametricMinSamples && IsNormal(a) && IsNormal(b) {
		if Levene(a, b).PValue > HomogeneityAlpha {
			return NameStudentT
		}
		return NameWelchT
	}
	return NameMannWhitneyU
}

// CompareIndependent compares a (the reference group) against b and decides
// significance against the Bonferroni-corrected alpha. Empty or too-small
// groups produce a neutral result with p = 1 rather than an error.
func CompareIndependent(metric, name1, name2 string, a, b []float64, correction Bonferroni) ComparisonResult {
	r := ComparisonResult{
		Metric:         metric,
		Group1:         name1,
		Group2:         name2,
		N1:             len(a),
		N2:             len(b),
		PValue:         1,
		CorrectedAlpha: correction.Corrected,
		TestUsed:       NameNone,
	}
	if len(a) == 0 || len(b) == 0 {
		return r
	}

	r.Mean1 = stat.Mean(a, nil)
	r.Mean2 = stat.Mean(b, nil)
	r.MeanDiff = r.Mean2 - r.Mean1
	if r.Mean1 != 0 {
		r.RelativeChange = r.MeanDiff / r.Mean1 * 100
	}
	r.EffectSize = CohensD(a, b)

	r.TestUsed = SelectTest(a, b)
	var res TestResult
	switch r.TestUsed {
	case NameInsufficient:
		return r
	case NameStudentT:
		res = StudentT(a, b)
	case NameWelchT:
		res = WelchT(a, b)
	default:
		res = MannWhitneyU(a, b)
	}

	if math.IsNaN(res.PValue) {
		// Both groups constant and equal: nothing to distinguish.
		return r
	}
	r.Statistic = finite(res.Statistic)
	r.PValue = res.PValue
	r.Significant = correction.IsSignificant(res.PValue)
	return r
}
