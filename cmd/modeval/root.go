package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modeval",
		Short: "modeval - compare sequential and parallel agent modes",
		Long: `modeval collects paired measurements of an agent backend running the same
prompts in sequential and parallel mode, then tests whether the modes differ.

Per-task paired effects are pooled only when the tasks agree; when
heterogeneity is extreme the per-task results are reported instead.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newAnalyzeCommand())
	cmd.AddCommand(newPairedCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
