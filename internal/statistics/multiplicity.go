package statistics

// SimultaneousComparisons is the number of metrics compared on the same data
// and the divisor of the Bonferroni correction.
const SimultaneousComparisons = 6

// RawAlpha is the uncorrected significance level used for exploratory
// per-task tests.
const RawAlpha = 0.05

// Bonferroni adjusts a family-wise alpha for a fixed number of comparisons.
type Bonferroni struct {
	Method      string  `json:"method" yaml:"method"`
	Comparisons int     `json:"comparisons" yaml:"comparisons"`
	Alpha       float64 `json:"alpha" yaml:"alpha"`
	Corrected   float64 `json:"corrected_alpha" yaml:"corrected_alpha"`
}

// NewBonferroni derives alpha from a confidence level and divides it across
// SimultaneousComparisons.
func NewBonferroni(confidenceLevel float64) Bonferroni {
	alpha := 1 - confidenceLevel
	return Bonferroni{
		Method:      "bonferroni",
		Comparisons: SimultaneousComparisons,
		Alpha:       alpha,
		Corrected:   alpha / SimultaneousComparisons,
	}
}

// IsSignificant reports whether p clears the corrected threshold.
func (b Bonferroni) IsSignificant(p float64) bool {
	return p < b.Corrected
}
