package main

import (
	"encoding/json"
	"fmt"

	"github.com/codecrdt/modeval/internal/analysis"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/reporting"
	"github.com/spf13/cobra"
)

var (
	pairedMetrics       []string
	pairedFormat        string
	pairedFailOnPooling bool
)

func newPairedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paired <results_dir | results.csv>",
		Short: "Run the per-task paired analysis",
		Long: `Compare the modes within each task with the Wilcoxon signed-rank test and
Cohen's d_z, then pool the task effects with a fixed-effects model.

The pooled effect is shown only when I² is below 75%. Above that the tasks
disagree and the per-task rows are the result.`,
		Args: cobra.ExactArgs(1),
		RunE: pairedCommandE,
	}

	cmd.Flags().StringSliceVarP(&pairedMetrics, "metric", "m", nil, "Metrics to analyze (default: all)")
	cmd.Flags().StringVarP(&pairedFormat, "format", "f", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&pairedFailOnPooling, "fail-on-invalid-pooling", false, "Exit with code 1 when a pooled estimate fails the heterogeneity gate")

	return cmd
}

func pairedCommandE(cmd *cobra.Command, args []string) error {
	if pairedFormat != "table" && pairedFormat != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", pairedFormat)
	}

	metrics := models.AllMetrics
	if len(pairedMetrics) > 0 {
		metrics = make([]models.Metric, 0, len(pairedMetrics))
		for _, name := range pairedMetrics {
			m, err := models.ParseMetric(name)
			if err != nil {
				return err
			}
			metrics = append(metrics, m)
		}
	}

	a, err := analyzeRecords(cmd, args[0])
	if err != nil {
		return err
	}

	results := make([]analysis.PairedAnalysis, 0, len(metrics))
	for _, m := range metrics {
		results = append(results, a.PairedByTask(m))
	}

	out := cmd.OutOrStdout()
	if pairedFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		if err := reporting.WritePairedTable(out, results); err != nil {
			return err
		}
		for _, p := range results {
			if len(p.Tasks) == 0 {
				continue
			}
			fmt.Fprintln(out) //nolint:errcheck
			if err := reporting.WritePairedTasks(out, p); err != nil {
				return err
			}
		}
	}

	return gateError(pairedFailOnPooling, results)
}
