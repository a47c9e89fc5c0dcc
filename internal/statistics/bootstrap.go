package statistics

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval computation.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower" yaml:"lower"`
	Upper           float64 `json:"upper" yaml:"upper"`
	Estimate        float64 `json:"estimate" yaml:"estimate"`
	ConfidenceLevel float64 `json:"confidence_level" yaml:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps" yaml:"num_bootstraps"`
	Seed            int64   `json:"seed" yaml:"seed"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// BootstrapMeanDiff computes a percentile bootstrap confidence interval for
// mean(b) - mean(a), resampling each group independently with replacement.
// The seed makes the interval reproducible. Groups with fewer than two values
// yield a degenerate interval at the point estimate.
func BootstrapMeanDiff(a, b []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	ci := ConfidenceInterval{ConfidenceLevel: confidenceLevel, Seed: seed}
	if len(a) == 0 || len(b) == 0 {
		return ci
	}
	ci.Estimate = stat.Mean(b, nil) - stat.Mean(a, nil)
	if len(a) < 2 || len(b) < 2 {
		ci.Lower, ci.Upper = ci.Estimate, ci.Estimate
		return ci
	}

	rng := rand.New(rand.NewSource(seed))
	iters := DefaultBootstrapIterations

	// Bootstrap: resample both groups, record the difference of means
	diffs := make([]float64, iters)
	sa := make([]float64, len(a))
	sb := make([]float64, len(b))
	for i := 0; i < iters; i++ {
		resample(rng, a, sa)
		resample(rng, b, sb)
		diffs[i] = stat.Mean(sb, nil) - stat.Mean(sa, nil)
	}

	sort.Float64s(diffs)

	// Percentile method
	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hiIdx >= iters {
		hiIdx = iters - 1
	}

	ci.Lower = diffs[loIdx]
	ci.Upper = diffs[hiIdx]
	ci.NumBootstraps = iters
	return ci
}

func resample(rng *rand.Rand, src, dst []float64) {
	for j := range dst {
		dst[j] = src[rng.Intn(len(src))]
	}
}

// IsSignificant returns true if the confidence interval does not contain zero,
// indicating statistical significance at the given confidence level.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}
