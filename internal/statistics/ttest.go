package statistics

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// HomogeneityAlpha is the Levene p-value above which variances are treated as
// equal.
const HomogeneityAlpha = 0.05

// TestResult is the outcome of a two-sample hypothesis test.
type TestResult struct {
	Statistic float64
	PValue    float64
	DF        float64
}

// Levene runs the median-centred (Brown-Forsythe) Levene test for equal
// variances across groups. When every group has zero spread around its
// median the statistic is undefined and PValue is NaN.
func Levene(groups ...[]float64) TestResult {
	k := len(groups)
	total := 0
	dev := make([][]float64, k)
	for i, g := range groups {
		if len(g) == 0 {
			continue
		}
		_, med, _ := Quartiles(g)
		dev[i] = make([]float64, len(g))
		for j, v := range g {
			dev[i][j] = math.Abs(v - med)
		}
		total += len(g)
	}
	if k < 2 || total <= k {
		return TestResult{Statistic: math.NaN(), PValue: math.NaN()}
	}

	var all []float64
	groupMeans := make([]float64, k)
	for i, d := range dev {
		if len(d) > 0 {
			groupMeans[i] = stat.Mean(d, nil)
		}
		all = append(all, d...)
	}
	grand := stat.Mean(all, nil)

	between, within := 0.0, 0.0
	for i, d := range dev {
		diff := groupMeans[i] - grand
		between += float64(len(d)) * diff * diff
		for _, v := range d {
			e := v - groupMeans[i]
			within += e * e
		}
	}

	d1, d2 := float64(k-1), float64(total-k)
	if within == 0 {
		return TestResult{Statistic: math.NaN(), PValue: math.NaN(), DF: d2}
	}
	w := (d2 / d1) * between / within
	f := distuv.F{D1: d1, D2: d2}
	return TestResult{Statistic: w, PValue: 1 - f.CDF(w), DF: d2}
}

// StudentT is the pooled-variance two-sample t-test. The statistic is
// positive when a has the larger mean.
func StudentT(a, b []float64) TestResult {
	n1, n2 := float64(len(a)), float64(len(b))
	m1, v1 := stat.MeanVariance(a, nil)
	m2, v2 := stat.MeanVariance(b, nil)
	df := n1 + n2 - 2
	sp := ((n1-1)*v1 + (n2-1)*v2) / df
	se := math.Sqrt(sp * (1/n1 + 1/n2))
	return tResult(m1-m2, se, df)
}

// WelchT is the unequal-variance two-sample t-test with the
// Welch-Satterthwaite degrees of freedom.
func WelchT(a, b []float64) TestResult {
	n1, n2 := float64(len(a)), float64(len(b))
	m1, v1 := stat.MeanVariance(a, nil)
	m2, v2 := stat.MeanVariance(b, nil)
	q1, q2 := v1/n1, v2/n2
	se := math.Sqrt(q1 + q2)
	df := (q1 + q2) * (q1 + q2) / (q1*q1/(n1-1) + q2*q2/(n2-1))
	return tResult(m1-m2, se, df)
}

func tResult(diff, se, df float64) TestResult {
	if se == 0 {
		if diff == 0 {
			return TestResult{Statistic: math.NaN(), PValue: math.NaN(), DF: df}
		}
		return TestResult{Statistic: math.Copysign(math.Inf(1), diff), PValue: 0, DF: df}
	}
	t := diff / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return TestResult{Statistic: t, PValue: 2 * dist.CDF(-math.Abs(t)), DF: df}
}
