package main

import (
	"fmt"
	"io"

	"github.com/codecrdt/modeval/internal/analysis"
	"github.com/codecrdt/modeval/internal/dataset"
	"github.com/codecrdt/modeval/internal/reporting"
	"github.com/spf13/cobra"
)

var (
	analyzeFormat        string
	analyzeOut           string
	analyzeExportCSV     string
	analyzeInterpret     bool
	analyzeFailOnPooling bool
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <results_dir | results.csv>",
		Short: "Analyze collected records",
		Long: `Compare sequential and parallel runs across every metric.

The report holds per-mode summaries, Bonferroni-corrected mode comparisons,
post-hoc power, per-task paired analysis with heterogeneity-gated pooling,
anomalies and a bootstrap interval for the overall score difference.`,
		Args: cobra.ExactArgs(1),
		RunE: analyzeCommandE,
	}

	cmd.Flags().StringVarP(&analyzeFormat, "format", "f", string(reporting.FormatTable), "Output format: table, json, yaml, markdown, html or junit")
	cmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&analyzeExportCSV, "export-csv", "", "Also write the analyzed records to this CSV file")
	cmd.Flags().BoolVar(&analyzeInterpret, "interpret", false, "Print a plain-language interpretation of the results")
	cmd.Flags().BoolVar(&analyzeFailOnPooling, "fail-on-invalid-pooling", false, "Exit with code 1 when a pooled estimate fails the heterogeneity gate")

	return cmd
}

func analyzeCommandE(cmd *cobra.Command, args []string) error {
	format, err := reporting.ParseFormat(analyzeFormat)
	if err != nil {
		return err
	}

	a, err := analyzeRecords(cmd, args[0])
	if err != nil {
		return err
	}
	report := buildReport(a)

	if err := withOutput(cmd, analyzeOut, func(w io.Writer) error {
		return reporting.Write(w, report, format)
	}); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if analyzeExportCSV != "" {
		if err := withOutput(cmd, analyzeExportCSV, func(w io.Writer) error {
			return dataset.WriteRecordsCSV(w, a.Records())
		}); err != nil {
			return fmt.Errorf("exporting records: %w", err)
		}
	}

	if analyzeInterpret {
		fmt.Fprint(cmd.OutOrStdout(), "\n"+reporting.FormatSummaryReport(report)) //nolint:errcheck
	}

	return gateError(analyzeFailOnPooling, report.Paired)
}

// gateError returns a GateFailureError naming the metrics whose pooling
// failed, when enabled.
func gateError(enabled bool, paired []analysis.PairedAnalysis) error {
	if !enabled {
		return nil
	}
	r := analysis.Report{Paired: paired}
	if invalid := r.InvalidPooling(); len(invalid) > 0 {
		return &GateFailureError{Metrics: invalid}
	}
	return nil
}
