package statistics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// tukeyK is the IQR multiplier for the outlier fences.
const tukeyK = 1.5

// minOutlierSamples is the smallest sample for which quartile-based outlier
// detection is meaningful.
const minOutlierSamples = 4

// StatisticalSummary describes one metric over one group of records.
type StatisticalSummary struct {
	Mean        float64   `json:"mean" yaml:"mean"`
	Median      float64   `json:"median" yaml:"median"`
	Std         float64   `json:"std" yaml:"std"`
	Min         float64   `json:"min" yaml:"min"`
	Max         float64   `json:"max" yaml:"max"`
	Q1          float64   `json:"q1" yaml:"q1"`
	Q3          float64   `json:"q3" yaml:"q3"`
	IQR         float64   `json:"iqr" yaml:"iqr"`
	CILower     float64   `json:"ci_lower" yaml:"ci_lower"`
	CIUpper     float64   `json:"ci_upper" yaml:"ci_upper"`
	Outliers    []float64 `json:"outliers" yaml:"outliers"`
	NSamples    int       `json:"n_samples" yaml:"n_samples"`
	SuccessRate float64   `json:"success_rate" yaml:"success_rate"`
}

// Clean drops NaN and infinite values, preserving order.
func Clean(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Percentile returns the p-th quantile (p in [0,1]) using linear
// interpolation between closest ranks, matching numpy's default method.
// sorted must be in ascending order and non-empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Quartiles returns Q1, median and Q3 of values.
func Quartiles(values []float64) (q1, median, q3 float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Percentile(sorted, 0.25), Percentile(sorted, 0.5), Percentile(sorted, 0.75)
}

// TukeyFences returns the [Q1 - 1.5 IQR, Q3 + 1.5 IQR] outlier bounds.
func TukeyFences(values []float64) (lower, upper float64) {
	q1, _, q3 := Quartiles(values)
	iqr := q3 - q1
	return q1 - tukeyK*iqr, q3 + tukeyK*iqr
}

// TrimOutliersIQR removes values outside the Tukey fences. Samples smaller
// than four are returned unchanged, and so is any sample where trimming
// would leave nothing.
func TrimOutliersIQR(values []float64) []float64 {
	if len(values) < minOutlierSamples {
		return values
	}
	lower, upper := TukeyFences(values)
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return values
	}
	return kept
}

// Summarize computes descriptive statistics for values. missing is the
// number of runs that produced no value; it only affects the success rate.
// NaN entries in values are also counted as missing.
func Summarize(values []float64, missing int, confidenceLevel float64, removeOutliers bool) StatisticalSummary {
	clean := Clean(values)
	total := len(values) + missing
	if len(clean) == 0 {
		return StatisticalSummary{Outliers: []float64{}}
	}

	q1, median, q3 := Quartiles(clean)
	iqr := q3 - q1

	outliers := []float64{}
	working := clean
	if len(clean) >= minOutlierSamples {
		lower, upper := q1-tukeyK*iqr, q3+tukeyK*iqr
		kept := make([]float64, 0, len(clean))
		for _, v := range clean {
			if v < lower || v > upper {
				outliers = append(outliers, v)
			} else {
				kept = append(kept, v)
			}
		}
		if removeOutliers && len(outliers) > 0 && len(kept) > 0 {
			working = kept
		}
	}

	s := StatisticalSummary{
		Median:      median,
		Q1:          q1,
		Q3:          q3,
		IQR:         iqr,
		Outliers:    outliers,
		NSamples:    len(working),
		SuccessRate: float64(len(working)) / float64(total),
	}
	s.Min, s.Max = working[0], working[0]
	for _, v := range working[1:] {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}

	s.Mean = stat.Mean(working, nil)
	if len(working) == 1 {
		s.CILower, s.CIUpper = s.Mean, s.Mean
		return s
	}

	s.Std = math.Sqrt(stat.Variance(working, nil))
	s.CILower, s.CIUpper = TInterval(s.Mean, s.Std, len(working), confidenceLevel)
	return s
}

// TInterval is the two-sided t confidence interval for a mean with sample
// standard deviation sd over n observations.
func TInterval(mean, sd float64, n int, confidenceLevel float64) (float64, float64) {
	if n < 2 || sd == 0 {
		return mean, mean
	}
	sem := sd / math.Sqrt(float64(n))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	margin := t.Quantile(0.5+confidenceLevel/2) * sem
	return mean - margin, mean + margin
}

// SampleStd is the n-1 standard deviation; 0 for fewer than two values.
func SampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return math.Sqrt(stat.Variance(values, nil))
}
