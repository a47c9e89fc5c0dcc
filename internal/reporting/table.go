package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/codecrdt/modeval/internal/analysis"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/mattn/go-runewidth"
)

const colGap = "  "

type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

// write prints the table with columns padded to their widest display width.
func (t *table) write(w io.Writer) {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			if i == len(cells)-1 {
				parts[i] = c
			} else {
				parts[i] = padRight(c, widths[i])
			}
		}
		fmt.Fprintln(w, strings.Join(parts, colGap)) //nolint:errcheck
	}

	line(t.header)
	rule := make([]string, len(widths))
	for i, wd := range widths {
		rule[i] = strings.Repeat("─", wd)
	}
	fmt.Fprintln(w, strings.Join(rule, colGap)) //nolint:errcheck
	for _, row := range t.rows {
		line(row)
	}
}

// WriteTable prints the mode comparisons and the paired gate results as
// aligned console tables.
func WriteTable(w io.Writer, r *analysis.Report) error {
	o := r.Overall
	corr := r.StatisticalTests.Correction
	fmt.Fprintf(w, "Evaluations: %s  Tasks: %d  Success: %s  Errors: %s\n", //nolint:errcheck
		formatCount(o.TotalEvaluations), o.UniqueTasks, formatPct(o.SuccessRate), formatPct(o.ErrorRate))
	fmt.Fprintf(w, "Corrected α: %s (%s, %d comparisons)\n\n", formatFloat(corr.Corrected, 4), corr.Method, corr.Comparisons) //nolint:errcheck

	cmp := &table{header: []string{"Metric", "Sequential", "Parallel", "Δ", "Test", "p", "Effect", "Sig"}}
	for _, m := range models.AllMetrics {
		c, ok := o.Comparisons[m.Label()]
		if !ok {
			continue
		}
		sig := "·"
		if c.Significant {
			sig = "✓"
		}
		cmp.add(m.Label(), formatFloat(c.Mean1, 2), formatFloat(c.Mean2, 2), formatSigned(c.MeanDiff, 2),
			c.TestUsed, formatP(c.PValue), formatPtr(c.EffectSize, 3), sig)
	}
	cmp.write(w)

	fmt.Fprintln(w) //nolint:errcheck
	return WritePairedTable(w, r.Paired)
}

// WritePairedTable prints one line per paired metric. The pooled column is
// blank when the heterogeneity gate fails.
func WritePairedTable(w io.Writer, paired []analysis.PairedAnalysis) error {
	t := &table{header: []string{"Metric", "Tasks", "Pooled d_z", "p", "I²", "Heterogeneity", "Pooling"}}
	for _, p := range paired {
		meta := p.Meta
		pooled, pValue := "-", "-"
		if v, ok := meta.Headline(); ok {
			pooled, pValue = formatFloat(v, 3), formatP(meta.PValue)
		}
		status := "valid"
		switch {
		case len(meta.Tasks) == 0:
			status = "n/a"
		case !meta.PoolingValid:
			status = "INVALID"
		}
		t.add(p.Metric, fmt.Sprintf("%d/%d", len(meta.Tasks), len(p.Tasks)), pooled, pValue,
			formatFloat(meta.I2, 1)+"%", meta.Heterogeneity, status)
	}
	t.write(w)
	return nil
}

// WritePairedTasks prints the per-task rows of one paired metric.
func WritePairedTasks(w io.Writer, p analysis.PairedAnalysis) error {
	fmt.Fprintf(w, "%s\n", p.Metric) //nolint:errcheck
	t := &table{header: []string{"Task", "n", "Sequential", "Parallel", "Δ", "d_z", "p", "Sig", "Notes"}}
	for _, r := range p.Tasks {
		sig := "·"
		if r.Significant {
			sig = "✓"
		}
		t.add(r.TaskName, fmt.Sprintf("%d", r.N), formatFloat(r.SequentialMean, 2), formatFloat(r.ParallelMean, 2),
			formatSigned(r.MeanDiff, 2), formatPtr(r.EffectSizeDz, 3), formatP(r.PValue), sig, strings.Join(r.Warnings, "; "))
	}
	t.write(w)
	return nil
}
