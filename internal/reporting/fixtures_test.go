package reporting

import (
	"testing"
	"time"

	"github.com/codecrdt/modeval/internal/analysis"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/stretchr/testify/require"
)

func scored(task string, mode models.Mode, run int, score float64) models.MeasurementRecord {
	r := models.MeasurementRecord{
		TaskID:       task,
		TaskName:     "Task " + task,
		Mode:         mode,
		RunNumber:    run,
		OverallScore: models.Float(score),
	}
	r.DeriveSuccess()
	return r
}

// buildReport creates two tasks of five paired runs. With agree set both
// tasks gain about ten points under parallel; otherwise task B loses them,
// which drives I² close to 100%.
func buildReport(t *testing.T, agree bool) *analysis.Report {
	t.Helper()
	base := []float64{60, 65, 70, 75, 80}
	shift := []float64{9, 10, 10, 10, 11}
	sign := -1.0
	if agree {
		sign = 1
	}
	var rs models.Records
	for i := range base {
		rs = append(rs,
			scored("A", models.ModeSequential, i+1, base[i]),
			scored("A", models.ModeParallel, i+1, base[i]+shift[i]),
			scored("B", models.ModeSequential, i+1, base[i]),
			scored("B", models.ModeParallel, i+1, base[i]+sign*shift[i]),
		)
	}
	a, err := analysis.New(rs, analysis.DefaultConfig())
	require.NoError(t, err)
	r := a.BuildReport()
	r.GeneratedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return r
}

func pairedFor(t *testing.T, r *analysis.Report, metric string) analysis.PairedAnalysis {
	t.Helper()
	for _, p := range r.Paired {
		if p.Metric == metric {
			return p
		}
	}
	t.Fatalf("no paired analysis for %s", metric)
	return analysis.PairedAnalysis{}
}
