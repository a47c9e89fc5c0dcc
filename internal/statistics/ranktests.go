package statistics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Exact null distributions are used below these sizes when no ties are
// present.
const (
	mannWhitneyExactMax = 8
	wilcoxonExactMax    = 50
)

// MannWhitneyU runs the two-sided Mann-Whitney U test. The statistic is U for
// the first sample. Small untied samples (either group of eight or fewer) use
// the exact distribution; everything else uses the normal approximation with
// tie and continuity correction.
func MannWhitneyU(a, b []float64) TestResult {
	n1, n2 := len(a), len(b)
	if n1 == 0 || n2 == 0 {
		return TestResult{Statistic: math.NaN(), PValue: math.NaN()}
	}
	combined := append(append([]float64(nil), a...), b...)
	ranks, ties := rankAverage(combined)

	r1 := 0.0
	for i := 0; i < n1; i++ {
		r1 += ranks[i]
	}
	fn1, fn2 := float64(n1), float64(n2)
	u1 := r1 - fn1*(fn1+1)/2
	u2 := fn1*fn2 - u1
	u := math.Max(u1, u2)

	var p float64
	if len(ties) == 0 && (n1 <= mannWhitneyExactMax || n2 <= mannWhitneyExactMax) {
		p = 2 * mannWhitneySF(n1, n2, int(math.Round(u)))
	} else {
		n := fn1 + fn2
		sigma := math.Sqrt(fn1 * fn2 / 12 * ((n + 1) - tieSum(ties)/(n*(n-1))))
		if sigma == 0 {
			return TestResult{Statistic: u1, PValue: 1}
		}
		z := (u - fn1*fn2/2 - 0.5) / sigma
		p = 2 * (1 - distuv.UnitNormal.CDF(z))
	}
	return TestResult{Statistic: u1, PValue: math.Min(p, 1)}
}

// mannWhitneySF returns P(U >= u) under the null for sample sizes n1, n2.
func mannWhitneySF(n1, n2, u int) float64 {
	// The null distribution is symmetric in the sample sizes; keep the
	// smaller one on the inner dimension.
	if n1 > n2 {
		n1, n2 = n2, n1
	}
	maxU := n1 * n2
	// c(m, n, k) = c(m-1, n, k-n) + c(m, n-1, k): the largest observation
	// comes from the first sample (adding n to U) or from the second.
	// prev[m][k] holds c(m, n-1, k); cur holds c(m, n, k).
	prev := make([][]float64, n1+1)
	for m := range prev {
		prev[m] = make([]float64, maxU+1)
	}
	for m := 0; m <= n1; m++ {
		prev[m][0] = 1 // n = 0: only U = 0 is possible
	}
	for n := 1; n <= n2; n++ {
		cur := make([][]float64, n1+1)
		for m := range cur {
			cur[m] = make([]float64, maxU+1)
		}
		cur[0][0] = 1
		for m := 1; m <= n1; m++ {
			for k := 0; k <= m*n; k++ {
				c := prev[m][k]
				if k >= n {
					c += cur[m-1][k-n]
				}
				cur[m][k] = c
			}
		}
		prev = cur
	}

	total, tail := 0.0, 0.0
	for k, c := range prev[n1] {
		total += c
		if k >= u {
			tail += c
		}
	}
	return tail / total
}

// WilcoxonSignedRank runs the two-sided Wilcoxon signed-rank test on paired
// samples. Zero differences are dropped. The statistic is the smaller of the
// positive and negative rank sums. Up to fifty untied, non-zero differences
// use the exact distribution; otherwise the normal approximation with tie
// correction applies. With no non-zero differences the p-value is 1.
func WilcoxonSignedRank(x, y []float64) TestResult {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	diffs := make([]float64, 0, n)
	hadZero := false
	for i := 0; i < n; i++ {
		d := x[i] - y[i]
		if d == 0 {
			hadZero = true
			continue
		}
		diffs = append(diffs, d)
	}
	nz := len(diffs)
	if nz == 0 {
		return TestResult{Statistic: 0, PValue: 1}
	}

	abs := make([]float64, nz)
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks, ties := rankAverage(abs)
	rPlus, rMinus := 0.0, 0.0
	for i, d := range diffs {
		if d > 0 {
			rPlus += ranks[i]
		} else {
			rMinus += ranks[i]
		}
	}
	t := math.Min(rPlus, rMinus)

	if nz <= wilcoxonExactMax && len(ties) == 0 && !hadZero {
		p := 2 * signedRankCDF(nz, int(math.Round(t)))
		return TestResult{Statistic: t, PValue: math.Min(p, 1)}
	}

	fn := float64(nz)
	mean := fn * (fn + 1) / 4
	variance := fn*(fn+1)*(2*fn+1)/24 - tieSum(ties)/48
	if variance <= 0 {
		return TestResult{Statistic: t, PValue: 1}
	}
	z := (t - mean) / math.Sqrt(variance)
	p := 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	return TestResult{Statistic: t, PValue: math.Min(p, 1)}
}

// signedRankCDF returns P(T <= t) for the signed-rank statistic with n
// non-zero, untied differences.
func signedRankCDF(n, t int) float64 {
	maxT := n * (n + 1) / 2
	counts := make([]float64, maxT+1)
	counts[0] = 1
	for k := 1; k <= n; k++ {
		for s := maxT; s >= k; s-- {
			counts[s] += counts[s-k]
		}
	}
	total := math.Ldexp(1, n)
	cum := 0.0
	for s := 0; s <= t && s <= maxT; s++ {
		cum += counts[s]
	}
	return cum / total
}
