package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/codecrdt/modeval/internal/execution"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/orchestration"
	"github.com/codecrdt/modeval/internal/projectconfig"
	"github.com/codecrdt/modeval/internal/store"
	"github.com/spf13/cobra"
)

var (
	evalPromptsPath string
	evalRuns        int
	evalMock        bool
	evalModes       string
	evalPromptIDs   []string
	evalFilters     []string
	evalOutputDir   string
	evalSeed        int64
	evalConcurrency int
	evalYes         bool
	evalVerbose     bool
)

func newEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Collect paired measurements from the agent backend",
		Long: `Run every prompt under the selected modes for the configured number of runs.

Jobs are shuffled with the seed, run with bounded concurrency and saved to
<output>/evaluation_<timestamp>/results as they finish. A failed job becomes
a failed record; it never stops the run.`,
		Args: cobra.NoArgs,
		RunE: evaluateCommandE,
	}

	cmd.Flags().StringVar(&evalPromptsPath, "prompts", "", "Prompts YAML file (default: paths.prompts from .modeval.yaml)")
	cmd.Flags().IntVarP(&evalRuns, "runs", "n", 0, "Runs per prompt and mode (default: collection.runs_per_prompt)")
	cmd.Flags().BoolVar(&evalMock, "mock", false, "Use the deterministic mock backend")
	cmd.Flags().StringVar(&evalModes, "modes", "both", "Modes to run: both, sequential or parallel")
	cmd.Flags().StringSliceVar(&evalPromptIDs, "prompt-ids", nil, "Only run these prompt ids (comma separated)")
	cmd.Flags().StringArrayVar(&evalFilters, "filter", nil, "Filter prompts by id/name/category glob pattern (can be repeated)")
	cmd.Flags().StringVarP(&evalOutputDir, "output", "o", "", "Base results directory (default: paths.results)")
	cmd.Flags().Int64Var(&evalSeed, "seed", projectconfig.DefaultSeed, "Seed for the job order")
	cmd.Flags().IntVar(&evalConcurrency, "concurrency", 0, "Maximum concurrent jobs (default: collection.max_concurrent_requests)")
	cmd.Flags().BoolVarP(&evalYes, "yes", "y", false, "Do not ask for confirmation before a live run")
	cmd.Flags().BoolVarP(&evalVerbose, "verbose", "v", false, "Print a line for every record")

	return cmd
}

func parseModes(s string) ([]models.Mode, error) {
	if s == "" || s == "both" {
		return models.Modes, nil
	}
	m, err := models.ParseMode(s)
	if err != nil {
		return nil, fmt.Errorf("--modes: %w", err)
	}
	return []models.Mode{m}, nil
}

func evaluateCommandE(cmd *cobra.Command, _ []string) error {
	pc, err := loadConfig()
	if err != nil {
		return err
	}

	// CLI flags override the project config
	if evalPromptsPath != "" {
		pc.Paths.Prompts = evalPromptsPath
	}
	if evalOutputDir != "" {
		pc.Paths.Results = evalOutputDir
	}
	if evalRuns > 0 {
		pc.Collection.RunsPerPrompt = evalRuns
	}
	if evalConcurrency > 0 {
		pc.Collection.MaxConcurrentRequests = evalConcurrency
	}
	if evalMock {
		pc.Collection.Engine = projectconfig.EngineMock
	}
	if cmd.Flags().Changed("seed") {
		pc.Collection.Seed = &evalSeed
	}
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	modes, err := parseModes(evalModes)
	if err != nil {
		return err
	}

	prompts, err := projectconfig.LoadPrompts(pc.Paths.Prompts)
	if err != nil {
		return err
	}
	if prompts, err = projectconfig.FilterPrompts(prompts, evalPromptIDs); err != nil {
		return err
	}
	if prompts, err = orchestration.FilterPrompts(prompts, evalFilters); err != nil {
		return err
	}
	if len(prompts) == 0 {
		return errors.New("no prompts selected")
	}

	out := cmd.OutOrStdout()
	total := len(prompts) * len(modes) * pc.Collection.RunsPerPrompt
	if pc.Collection.Engine != projectconfig.EngineMock && !evalYes && isTerminal(cmd.InOrStdin()) {
		question := fmt.Sprintf("Send %d jobs to %s?", total, pc.Collection.BackendURL)
		if !promptConfirm(cmd.InOrStdin(), out, question) {
			return errors.New("evaluation cancelled")
		}
	}

	backend, err := execution.New(pc.Collection)
	if err != nil {
		return err
	}
	defer backend.Close() //nolint:errcheck

	now := time.Now()
	st, err := store.NewRun(pc.Paths.Results, now)
	if err != nil {
		return err
	}
	if pc.Collection.SaveRawResponses != nil {
		st.SaveRawResponses = *pc.Collection.SaveRawResponses
	}

	env := store.CurrentEnvironment(now)
	env.Seed = pc.SeedValue()
	env.Engine = pc.Collection.Engine
	env.RunsPerPrompt = pc.Collection.RunsPerPrompt
	env.Prompts = len(prompts)
	env.Configuration = pc
	if err := st.WriteEnvironment(env); err != nil {
		return err
	}

	collector := orchestration.NewCollector(backend, st, orchestration.CollectorConfig{
		RunsPerPrompt:   pc.Collection.RunsPerPrompt,
		Modes:           modes,
		MaxConcurrent:   pc.Collection.MaxConcurrentRequests,
		Seed:            pc.SeedValue(),
		CheckpointEvery: pc.Collection.CheckpointEvery,
	})
	collector.OnProgress(progressPrinter(out, evalVerbose))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintf(out, "Collecting %d jobs (%d prompts × %d modes × %d runs) with the %s backend\n", //nolint:errcheck
		total, len(prompts), len(modes), pc.Collection.RunsPerPrompt, pc.Collection.Engine)

	start := time.Now()
	records, err := collector.Run(ctx, prompts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("collection interrupted; partial results in %s: %w", st.Dir(), err)
		}
		return fmt.Errorf("collection failed: %w", err)
	}

	succeeded := 0
	for _, r := range records {
		if r.Success {
			succeeded++
		}
	}
	elapsed := time.Since(start).Round(time.Millisecond)
	fmt.Fprintf(out, "Collected %d records (%d successful) in %s\n", len(records), succeeded, elapsed) //nolint:errcheck

	fmt.Fprintf(out, "Results: %s\n", st.Dir()) //nolint:errcheck
	return nil
}

// progressPrinter reports each finished record. Without verbose only failures
// and checkpoints are printed.
func progressPrinter(w io.Writer, verbose bool) orchestration.ProgressListener {
	return func(e orchestration.ProgressEvent) {
		switch e.EventType {
		case orchestration.EventRecordComplete:
			if e.Success && !verbose {
				return
			}
			status := "✓"
			if !e.Success {
				status = "✗"
			}
			line := fmt.Sprintf("[%d/%d] %s %s %s run %d", e.Completed, e.Total, status, e.TaskID, e.Mode, e.RunNumber)
			if e.Error != "" {
				line += ": " + e.Error
			}
			fmt.Fprintln(w, line) //nolint:errcheck
		case orchestration.EventCheckpoint:
			fmt.Fprintf(w, "[%d/%d] checkpoint saved\n", e.Completed, e.Total) //nolint:errcheck
		}
	}
}
