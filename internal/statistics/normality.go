package statistics

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NormalityAlpha is the p-value above which a sample is treated as normal.
const NormalityAlpha = 0.05

// ErrTooFewSamples is returned by tests that need more observations than
// were supplied.
var ErrTooFewSamples = errors.New("statistics: too few samples")

// Royston (1995) polynomial coefficients for the Shapiro-Wilk weights and the
// normalizing transformation of W.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk tests the null hypothesis that values come from a normal
// distribution, using Royston's approximation. It needs at least three
// observations. A sample with zero range returns W = 1, p = 1.
func ShapiroWilk(values []float64) (w, p float64, err error) {
	n := len(values)
	if n < 3 {
		return 0, 0, ErrTooFewSamples
	}

	x := append([]float64(nil), values...)
	sort.Float64s(x)
	if x[n-1]-x[0] == 0 {
		return 1, 1, nil
	}

	a := shapiroWeights(n)

	mean := stat.Mean(x, nil)
	num, ss := 0.0, 0.0
	for i, v := range x {
		num += a[i] * v
		d := v - mean
		ss += d * d
	}
	w = math.Min(num*num/ss, 1)

	if n == 3 {
		p = 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return w, math.Max(0, math.Min(1, p)), nil
	}
	if w >= 1 {
		return 1, 1, nil
	}

	fn := float64(n)
	y := math.Log(1 - w)
	var m, s float64
	if n <= 11 {
		gamma := poly(swG, fn)
		if y >= gamma {
			return w, 1e-99, nil
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, fn)
		s = math.Exp(poly(swC4, fn))
	} else {
		lx := math.Log(fn)
		m = poly(swC5, lx)
		s = math.Exp(poly(swC6, lx))
	}
	p = 1 - distuv.UnitNormal.CDF((y-m)/s)
	return w, p, nil
}

// IsNormal reports whether the sample passes Shapiro-Wilk at NormalityAlpha.
// Samples too small to test are treated as non-normal.
func IsNormal(values []float64) bool {
	_, p, err := ShapiroWilk(values)
	if err != nil {
		return false
	}
	return p > NormalityAlpha
}

// shapiroWeights returns the antisymmetric Shapiro-Wilk coefficients for a
// sample of size n, ordered to match an ascending sort.
func shapiroWeights(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt(0.5), math.Sqrt(0.5)
		return a
	}

	fn := float64(n)
	m := make([]float64, n)
	summ2 := 0.0
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (fn + 0.25))
		summ2 += m[i] * m[i]
	}
	ssumm2 := math.Sqrt(summ2)
	u := 1 / math.Sqrt(fn)

	an := poly(swC1, u) + m[n-1]/ssumm2
	a[n-1], a[0] = an, -an
	if n > 5 {
		an1 := poly(swC2, u) + m[n-2]/ssumm2
		a[n-2], a[1] = an1, -an1
		phi := (summ2 - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
		for i := 2; i < n-2; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
		return a
	}
	phi := (summ2 - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
	for i := 1; i < n-1; i++ {
		a[i] = m[i] / math.Sqrt(phi)
	}
	return a
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
