package statistics

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	nctMaxIter = 1000
	nctErrMax  = 1e-12
	// Beyond this squared noncentrality the series underflows and a normal
	// approximation is used instead.
	nctNormalApprox = 1415.4
)

// NoncentralTCDF returns P(T <= t) for a noncentral t distribution with df
// degrees of freedom and noncentrality delta, using Lenth's AS 243 series.
func NoncentralTCDF(t, df, delta float64) float64 {
	if df <= 0 || math.IsNaN(t) || math.IsNaN(delta) {
		return math.NaN()
	}
	if delta == 0 {
		return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.CDF(t)
	}
	if math.IsInf(t, 1) {
		return 1
	}
	if math.IsInf(t, -1) {
		return 0
	}

	negate := false
	tt, del := t, delta
	if t < 0 {
		if delta > 40 {
			return 0
		}
		negate = true
		tt, del = -t, -delta
	}

	if df > 4e5 || del*del > nctNormalApprox {
		s := 1 / (4 * df)
		z := distuv.Normal{Mu: del, Sigma: math.Sqrt(1 + tt*tt*2*s)}
		p := z.CDF(tt * (1 - s))
		if negate {
			return 1 - p
		}
		return p
	}

	tnc := 0.0
	x := tt * tt / (tt*tt + df)
	if x > 0 {
		lambda := del * del
		p := 0.5 * math.Exp(-0.5*lambda)
		if p == 0 {
			if negate {
				return 1
			}
			return 0
		}
		q := math.Sqrt(2/math.Pi) * p * del
		s := 0.5 - p
		if s < 1e-7 {
			s = -0.5 * math.Expm1(-0.5*lambda)
		}
		a := 0.5
		b := 0.5 * df
		rxb := math.Pow(1-x, b)
		lgb, _ := math.Lgamma(b)
		lgb5, _ := math.Lgamma(0.5 + b)
		albeta := 0.5*math.Log(math.Pi) + lgb - lgb5
		xodd := mathext.RegIncBeta(a, b, x)
		godd := 2 * rxb * math.Exp(a*math.Log(x)-albeta)
		xeven := 1 - rxb
		if b*x < 2.220446049250313e-16 {
			xeven = b * x
		}
		geven := b * x * rxb
		tnc = p*xodd + q*xeven

		for it := 1; it <= nctMaxIter; it++ {
			a++
			xodd -= godd
			xeven -= geven
			godd *= x * (a + b - 1) / a
			geven *= x * (a + b - 0.5) / (a + 0.5)
			p *= lambda / float64(2*it)
			q *= lambda / float64(2*it+1)
			tnc += p*xodd + q*xeven
			s -= p
			if s < -1e-10 || (s <= 0 && it > 1) {
				break
			}
			if math.Abs(2*s*(xodd-godd)) < nctErrMax {
				break
			}
		}
	}

	tnc += distuv.UnitNormal.CDF(-del)
	tnc = math.Min(tnc, 1)
	if negate {
		return 1 - tnc
	}
	return tnc
}

// PostHocPower is the probability that a two-sided two-sample t-test at
// alpha detects an effect of the given standardized size with n1 and n2
// observations. It is nil when the effect is undefined or either group has
// fewer than two observations.
func PostHocPower(effect *float64, n1, n2 int, alpha float64) *float64 {
	if effect == nil || math.IsNaN(*effect) || n1 < 2 || n2 < 2 {
		return nil
	}
	f1, f2 := float64(n1), float64(n2)
	df := f1 + f2 - 2
	ncp := math.Abs(*effect) * math.Sqrt(f1*f2/(f1+f2))
	tCrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - alpha/2)

	power := 1 - NoncentralTCDF(tCrit, df, ncp) + NoncentralTCDF(-tCrit, df, ncp)
	return finite(math.Max(0, math.Min(1, power)))
}
