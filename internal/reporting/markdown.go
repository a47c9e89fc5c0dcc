package reporting

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/codecrdt/modeval/internal/analysis"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/statistics"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var title = cases.Title(language.English)

// Markdown renders the report summary. A paired metric whose pooled estimate
// failed the heterogeneity gate is shown through its per-task table and a
// warning only.
func Markdown(r *analysis.Report) string {
	var b strings.Builder
	o := r.Overall

	b.WriteString("# Mode Evaluation Report\n\n")
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated: %s  \n", r.GeneratedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "Confidence level: %s  \n", formatPct(r.ConfidenceLevel))
	fmt.Fprintf(&b, "Evaluations: %s across %d tasks (success %s, errors %s)\n\n",
		formatCount(o.TotalEvaluations), o.UniqueTasks, formatPct(o.SuccessRate), formatPct(o.ErrorRate))

	b.WriteString("## Modes\n\n")
	b.WriteString("| Mode | Runs | Success | Errors | Latency (s) | Overall score |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, mode := range models.Modes {
		ms := o.ByMode[mode]
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", mode, formatCount(ms.Count),
			formatPct(ms.SuccessRate), formatPct(ms.ErrorRate),
			averageCell(ms.Averages, models.MetricLatency), averageCell(ms.Averages, models.MetricOverallScore))
	}

	corr := r.StatisticalTests.Correction
	fmt.Fprintf(&b, "\n## Mode comparisons\n\n%s correction over %d comparisons: α = %s, corrected α = %s.\n\n",
		title.String(corr.Method), corr.Comparisons, formatFloat(corr.Alpha, 3), formatFloat(corr.Corrected, 4))
	b.WriteString("| Metric | Sequential | Parallel | Δ | Change | Test | p | Effect | Significant |\n")
	b.WriteString("|---|---:|---:|---:|---:|---|---:|---:|---|\n")
	for _, m := range models.AllMetrics {
		c, ok := o.Comparisons[m.Label()]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s%% | %s | %s | %s | %s |\n", m.Label(),
			formatFloat(c.Mean1, 2), formatFloat(c.Mean2, 2), formatSigned(c.MeanDiff, 2),
			formatSigned(c.RelativeChange, 1), c.TestUsed, formatP(c.PValue),
			formatPtr(c.EffectSize, 3), yesNo(c.Significant))
	}

	b.WriteString("\n## Headline tests\n\n")
	b.WriteString("| Metric | Test | p | Significant | Effect size | Power |\n")
	b.WriteString("|---|---|---:|---|---|---|\n")
	for _, t := range r.StatisticalTests.Tests {
		power := t.PowerStatus
		if t.Power != nil {
			power = formatPct(*t.Power)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s (%s) | %s |\n", t.Metric, t.Test, formatP(t.PValue),
			yesNo(t.Significant), formatPtr(t.EffectSize, 3), t.EffectInterpretation, power)
	}

	b.WriteString("\n## Paired analysis by task\n")
	for _, p := range r.Paired {
		writePairedMarkdown(&b, p)
	}

	b.WriteString("\n## Anomalies\n\n")
	if len(r.Anomalies) == 0 {
		b.WriteString("No anomalous records.\n")
	} else {
		b.WriteString("| Task | Mode | Run | Metric | Value | z |\n")
		b.WriteString("|---|---|---:|---|---:|---:|\n")
		for _, a := range r.Anomalies {
			for _, f := range a.Flags {
				fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s |\n", a.TaskID, a.Mode, a.RunNumber,
					f.Metric, formatFloat(f.Value, 2), formatFloat(f.ZScore, 2))
			}
		}
	}

	bs := r.Bootstrap
	b.WriteString("\n## Bootstrap\n\n")
	if bs.NumBootstraps == 0 {
		b.WriteString("Not enough overall scores for a bootstrap interval.\n")
	} else {
		fmt.Fprintf(&b, "Parallel − sequential overall score: %s, %s CI [%s, %s] (%s resamples, seed %d).\n",
			formatSigned(bs.Estimate, 2), formatPct(bs.ConfidenceLevel), formatFloat(bs.Lower, 2),
			formatFloat(bs.Upper, 2), formatCount(bs.NumBootstraps), bs.Seed)
	}
	return b.String()
}

func writePairedMarkdown(b *strings.Builder, p analysis.PairedAnalysis) {
	if len(p.Tasks) == 0 {
		return
	}
	meta := p.Meta
	fmt.Fprintf(b, "\n### %s\n\n", p.Metric)

	if pooled, ok := meta.Headline(); ok {
		fmt.Fprintf(b, "Pooled effect (d_z): **%s** (SE %s, p = %s). I² = %s%%, %s heterogeneity.\n\n",
			formatFloat(pooled, 3), formatFloat(meta.PooledSE, 3), formatP(meta.PValue),
			formatFloat(meta.I2, 1), meta.Heterogeneity)
		if meta.Heterogeneity != statistics.HeterogeneityLow {
			fmt.Fprintf(b, "> %s\n\n", meta.Interpretation)
		}
	} else if len(meta.Tasks) > 0 {
		fmt.Fprintf(b, "> **Warning:** I² = %s%% across %d tasks. The tasks disagree too much for a single pooled effect; read the per-task results below.\n\n",
			formatFloat(meta.I2, 1), len(meta.Tasks))
	} else {
		b.WriteString("No task has a measurable paired effect.\n\n")
	}

	b.WriteString("| Task | n | Sequential | Parallel | Δ | d_z | p | Significant |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---|\n")
	var warnings []string
	for _, t := range p.Tasks {
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s | %s | %s | %s |\n", t.TaskName, t.N,
			formatFloat(t.SequentialMean, 2), formatFloat(t.ParallelMean, 2), formatSigned(t.MeanDiff, 2),
			formatPtr(t.EffectSizeDz, 3), formatP(t.PValue), yesNo(t.Significant))
		for _, w := range t.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", t.TaskID, w))
		}
	}
	if len(meta.SkippedTasks) > 0 {
		skipped := append([]string(nil), meta.SkippedTasks...)
		sort.Strings(skipped)
		warnings = append(warnings, "left out of pooling: "+strings.Join(skipped, ", "))
	}
	if len(warnings) > 0 {
		b.WriteString("\n")
		for _, w := range warnings {
			fmt.Fprintf(b, "- %s\n", w)
		}
	}
}

func averageCell(avg map[string]float64, m models.Metric) string {
	v, ok := avg[m.Label()]
	if !ok {
		return "n/a"
	}
	return formatFloat(v, 2)
}

// HTML converts the Markdown summary to a standalone HTML page.
func HTML(r *analysis.Report) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return nil, fmt.Errorf("rendering HTML: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString("Mode Evaluation Report"))
	out.WriteString("<style>body{font-family:sans-serif;max-width:64rem;margin:2rem auto}table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:.25rem .5rem}blockquote{color:#8a4b00}</style>\n")
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
