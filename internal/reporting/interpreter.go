package reporting

import (
	"fmt"
	"strings"

	"github.com/codecrdt/modeval/internal/analysis"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/statistics"
)

// InterpretScore returns a plain-language label for a quality score (0–100).
func InterpretScore(score float64) string {
	switch {
	case score > 90:
		return "Excellent (>90)"
	case score >= 70:
		return "Good (70-90)"
	case score >= 50:
		return "Needs Work (50-70)"
	default:
		return "Poor (<50)"
	}
}

// InterpretSuccessRate returns a human-readable explanation of a success rate (0–1).
func InterpretSuccessRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All runs succeeded (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most runs succeeded (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the runs succeeded (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few runs succeeded (%.0f%%)", pct)
	}
}

// InterpretComparison explains a mode comparison in one sentence.
func InterpretComparison(c statistics.ComparisonResult) string {
	if !c.Tested() {
		return fmt.Sprintf("%s: not enough data to compare the modes.", c.Metric)
	}
	direction := "higher"
	if c.MeanDiff < 0 {
		direction = "lower"
	}
	verdict := "not significant"
	if c.Significant {
		verdict = fmt.Sprintf("significant at corrected α=%.4f", c.CorrectedAlpha)
	}
	return fmt.Sprintf("%s: %s is %.1f%% %s than %s (%s, p=%s, %s effect).",
		c.Metric, c.Group2, abs(c.RelativeChange), direction, c.Group1,
		verdict, formatP(c.PValue), statistics.InterpretEffectSize(c.EffectSize))
}

// InterpretPooling explains the pooled paired effect, or why it is withheld.
func InterpretPooling(p analysis.PairedAnalysis) string {
	meta := p.Meta
	if pooled, ok := meta.Headline(); ok {
		return fmt.Sprintf("%s: pooled d_z=%.3f over %d tasks; %s.", p.Metric, pooled, len(meta.Tasks), meta.Interpretation)
	}
	if len(meta.Tasks) == 0 {
		return fmt.Sprintf("%s: %s.", p.Metric, meta.Interpretation)
	}
	return fmt.Sprintf("%s: I²=%.1f%%, %s.", p.Metric, meta.I2, meta.Interpretation)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// FormatSummaryReport produces a plain-language summary of a report.
func FormatSummaryReport(r *analysis.Report) string {
	var b strings.Builder
	o := r.Overall

	b.WriteString("=== Interpretation ===\n\n")
	fmt.Fprintf(&b, "Success:       %s\n", InterpretSuccessRate(o.SuccessRate))
	for _, mode := range models.Modes {
		ms := o.ByMode[mode]
		if score, ok := ms.Averages[models.MetricOverallScore.Label()]; ok {
			fmt.Fprintf(&b, "%-14s %.2f, %s\n", string(mode)+":", score, InterpretScore(score))
		}
	}

	b.WriteString("\nComparisons:\n")
	for _, t := range r.StatisticalTests.Tests {
		if c, ok := o.Comparisons[t.Metric]; ok {
			fmt.Fprintf(&b, "  %s\n", InterpretComparison(c))
		}
	}

	b.WriteString("\nPaired by task:\n")
	for _, p := range r.Paired {
		if len(p.Tasks) == 0 {
			continue
		}
		icon := "✓"
		if len(p.Meta.Tasks) > 0 && !p.Meta.PoolingValid {
			icon = "✗"
		}
		fmt.Fprintf(&b, "  %s %s\n", icon, InterpretPooling(p))
	}

	return b.String()
}
