package statistics

import (
	"math"
	"testing"
)

func TestBootstrapMeanDiff_EmptyGroup(t *testing.T) {
	ci := BootstrapMeanDiff(nil, []float64{1, 2}, 0.95, 42)
	if ci.Estimate != 0.0 || ci.Lower != 0.0 || ci.Upper != 0.0 {
		t.Errorf("expected zero CI for empty input, got %+v", ci)
	}
	if ci.NumBootstraps != 0 {
		t.Errorf("expected 0 bootstraps for empty input, got %d", ci.NumBootstraps)
	}
}

func TestBootstrapMeanDiff_SingleValues(t *testing.T) {
	ci := BootstrapMeanDiff([]float64{70}, []float64{75}, 0.95, 42)
	if ci.Estimate != 5 || ci.Lower != 5 || ci.Upper != 5 {
		t.Errorf("expected degenerate CI at 5, got %+v", ci)
	}
}

func TestBootstrapMeanDiff_IdenticalValues(t *testing.T) {
	ci := BootstrapMeanDiff([]float64{80, 80, 80}, []float64{82, 82, 82, 82}, 0.95, 42)
	if math.Abs(ci.Lower-2) > 1e-9 || math.Abs(ci.Upper-2) > 1e-9 {
		t.Errorf("expected CI [2, 2] for constant groups, got [%f, %f]", ci.Lower, ci.Upper)
	}
}

func TestBootstrapMeanDiff_ClearShift(t *testing.T) {
	seq := []float64{70, 72, 74, 71, 73, 75, 69, 72, 74, 70}
	par := []float64{80, 82, 84, 81, 83, 85, 79, 82, 84, 80}
	ci := BootstrapMeanDiff(seq, par, 0.95, 42)

	if math.Abs(ci.Estimate-10) > 1e-9 {
		t.Errorf("expected estimate 10, got %f", ci.Estimate)
	}
	if ci.Lower >= ci.Estimate || ci.Upper <= ci.Estimate {
		t.Errorf("CI [%f, %f] should bracket estimate %f", ci.Lower, ci.Upper, ci.Estimate)
	}
	if !IsSignificant(ci) {
		t.Errorf("expected CI [%f, %f] to exclude zero", ci.Lower, ci.Upper)
	}
	if ci.NumBootstraps != DefaultBootstrapIterations {
		t.Errorf("expected %d bootstraps, got %d", DefaultBootstrapIterations, ci.NumBootstraps)
	}
	if ci.Seed != 42 {
		t.Errorf("expected seed 42 to be recorded, got %d", ci.Seed)
	}
}

func TestBootstrapMeanDiff_Reproducible(t *testing.T) {
	seq := []float64{0.3, 0.5, 0.7, 0.4, 0.6}
	par := []float64{0.4, 0.5, 0.8, 0.3, 0.7}
	a := BootstrapMeanDiff(seq, par, 0.95, 7)
	b := BootstrapMeanDiff(seq, par, 0.95, 7)
	if a != b {
		t.Errorf("same seed should give the same interval: %+v vs %+v", a, b)
	}
}

func TestBootstrapMeanDiff_NarrowerAtHigherN(t *testing.T) {
	small := []float64{0.3, 0.5, 0.7}
	large := []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.3, 0.4, 0.5, 0.6, 0.7,
		0.3, 0.4, 0.5, 0.6, 0.7, 0.3, 0.4, 0.5, 0.6, 0.7}

	ciSmall := BootstrapMeanDiff(small, small, 0.95, 42)
	ciLarge := BootstrapMeanDiff(large, large, 0.95, 42)

	widthSmall := ciSmall.Upper - ciSmall.Lower
	widthLarge := ciLarge.Upper - ciLarge.Lower

	if widthLarge >= widthSmall {
		t.Errorf("larger sample should yield narrower CI: small=%f, large=%f", widthSmall, widthLarge)
	}
}

func TestIsSignificant(t *testing.T) {
	tests := []struct {
		name string
		ci   ConfidenceInterval
		want bool
	}{
		{"all positive", ConfidenceInterval{Lower: 0.1, Upper: 0.5}, true},
		{"all negative", ConfidenceInterval{Lower: -0.5, Upper: -0.1}, true},
		{"spans zero", ConfidenceInterval{Lower: -0.1, Upper: 0.3}, false},
		{"lower at zero", ConfidenceInterval{Lower: 0.0, Upper: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSignificant(tt.ci); got != tt.want {
				t.Errorf("IsSignificant(%+v) = %v, want %v", tt.ci, got, tt.want)
			}
		})
	}
}
