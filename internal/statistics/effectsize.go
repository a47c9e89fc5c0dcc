package statistics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Effect size magnitude bands.
const (
	EffectNegligible = "negligible"
	EffectSmall      = "small"
	EffectMedium     = "medium"
	EffectLarge      = "large"
	EffectUndefined  = "undefined"
)

// CohensD returns (mean(b) - mean(a)) divided by the pooled standard deviation,
// where the pooled variance is the plain average of both sample variances.
// It is nil when either sample has fewer than two values or the pooled
// deviation is zero.
func CohensD(a, b []float64) *float64 {
	if len(a) < 2 || len(b) < 2 {
		return nil
	}
	m1, v1 := stat.MeanVariance(a, nil)
	m2, v2 := stat.MeanVariance(b, nil)
	pooled := math.Sqrt((v1 + v2) / 2)
	if pooled == 0 || math.IsNaN(pooled) {
		return nil
	}
	d := (m2 - m1) / pooled
	return &d
}

// CohensDz is the paired effect size mean(diffs) / sd(diffs). It is nil for
// fewer than two differences or when every difference is the same.
func CohensDz(diffs []float64) *float64 {
	if len(diffs) < 2 {
		return nil
	}
	m, v := stat.MeanVariance(diffs, nil)
	sd := math.Sqrt(v)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	d := m / sd
	return &d
}

// finite returns a pointer to v, or nil when v is NaN or infinite.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// InterpretEffectSize maps |d| onto the conventional Cohen bands.
func InterpretEffectSize(d *float64) string {
	if d == nil || math.IsNaN(*d) {
		return EffectUndefined
	}
	switch abs := math.Abs(*d); {
	case abs < 0.2:
		return EffectNegligible
	case abs < 0.5:
		return EffectSmall
	case abs < 0.8:
		return EffectMedium
	default:
		return EffectLarge
	}
}
