package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/codecrdt/modeval/internal/execution"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/store"
	"github.com/codecrdt/modeval/internal/tokens"
	"github.com/codecrdt/modeval/internal/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Job is one (prompt, mode, run) evaluation.
type Job struct {
	Prompt    models.EvaluationPrompt
	Mode      models.Mode
	RunNumber int
}

// CollectorConfig controls a collection run.
type CollectorConfig struct {
	RunsPerPrompt   int
	Modes           []models.Mode
	MaxConcurrent   int
	Seed            int64
	CheckpointEvery int
	// Tokens estimates TotalTokens from the response content. Defaults to
	// tokens.EstimatingCounter.
	Tokens tokens.Counter
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventCollectionStart    EventType = "collection_start"
	EventRecordComplete     EventType = "record_complete"
	EventCheckpoint         EventType = "checkpoint"
	EventCollectionComplete EventType = "collection_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	TaskID    string
	Mode      models.Mode
	RunNumber int
	Completed int
	Total     int
	Success   bool
	Error     string
}

// Collector runs every job of a plan against a backend and persists the
// records as they finish.
type Collector struct {
	backend execution.Backend
	store   *store.Store
	cfg     CollectorConfig
	now     func() time.Time

	mu      sync.Mutex
	records models.Records

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// NewCollector creates a collector. st may be nil to keep records in memory
// only.
func NewCollector(backend execution.Backend, st *store.Store, cfg CollectorConfig) *Collector {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if len(cfg.Modes) == 0 {
		cfg.Modes = models.Modes
	}
	if cfg.Tokens == nil {
		cfg.Tokens = tokens.EstimatingCounter{}
	}
	return &Collector{
		backend: backend,
		store:   st,
		cfg:     cfg,
		now:     time.Now,
	}
}

// OnProgress registers a progress listener
func (c *Collector) OnProgress(listener ProgressListener) {
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	c.listeners = append(c.listeners, listener)
}

func (c *Collector) notifyProgress(event ProgressEvent) {
	c.progressMu.Lock()
	listeners := make([]ProgressListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Plan lists prompts × modes × runs in a fixed order.
func Plan(prompts []models.EvaluationPrompt, modes []models.Mode, runs int) []Job {
	jobs := make([]Job, 0, len(prompts)*len(modes)*runs)
	for _, p := range prompts {
		for _, m := range modes {
			for run := 1; run <= runs; run++ {
				jobs = append(jobs, Job{Prompt: p, Mode: m, RunNumber: run})
			}
		}
	}
	return jobs
}

// Shuffle randomizes job order with a generator seeded from seed, so the
// same seed always gives the same order.
func Shuffle(jobs []Job, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(jobs), func(i, j int) {
		jobs[i], jobs[j] = jobs[j], jobs[i]
	})
}

// Run evaluates every planned job. A failing job becomes a failed record and
// never stops the run; only persistence errors and cancellation do. The
// records collected so far are returned along with any error.
func (c *Collector) Run(ctx context.Context, prompts []models.EvaluationPrompt) (models.Records, error) {
	jobs := Plan(prompts, c.cfg.Modes, c.cfg.RunsPerPrompt)
	Shuffle(jobs, c.cfg.Seed)

	c.mu.Lock()
	c.records = make(models.Records, 0, len(jobs))
	c.mu.Unlock()

	c.notifyProgress(ProgressEvent{EventType: EventCollectionStart, Total: len(jobs)})
	slog.Debug("Starting collection", "jobs", len(jobs), "seed", c.cfg.Seed, "concurrency", c.cfg.MaxConcurrent)

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(c.cfg.MaxConcurrent))

	for _, job := range jobs {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			rec := c.runJob(gctx, job)
			if err := gctx.Err(); err != nil {
				return err
			}
			return c.collect(rec, len(jobs))
		})
	}

	err := g.Wait()

	c.mu.Lock()
	collected := make(models.Records, len(c.records))
	copy(collected, c.records)
	c.mu.Unlock()

	if c.store != nil && len(collected) > 0 {
		if cerr := c.store.WriteCheckpoint(collected); cerr != nil && err == nil {
			err = fmt.Errorf("writing final checkpoint: %w", cerr)
		}
	}
	if err == nil {
		err = ctx.Err()
	}

	c.notifyProgress(ProgressEvent{EventType: EventCollectionComplete, Completed: len(collected), Total: len(jobs)})
	return collected.Sorted(), err
}

// collect stores a finished record and checkpoints every CheckpointEvery
// records.
func (c *Collector) collect(rec models.MeasurementRecord, total int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveRecord(&rec); err != nil {
			return fmt.Errorf("saving %s: %w", rec.Key(), err)
		}
	}
	c.records = append(c.records, rec)
	completed := len(c.records)
	utils.RecordToSlog(&rec)

	errMsg := ""
	if rec.Error != nil {
		errMsg = *rec.Error
	}
	c.notifyProgress(ProgressEvent{
		EventType: EventRecordComplete,
		TaskID:    rec.TaskID,
		Mode:      rec.Mode,
		RunNumber: rec.RunNumber,
		Completed: completed,
		Total:     total,
		Success:   rec.Success,
		Error:     errMsg,
	})

	if c.store != nil && c.cfg.CheckpointEvery > 0 && completed%c.cfg.CheckpointEvery == 0 {
		if err := c.store.WriteCheckpoint(c.records); err != nil {
			return fmt.Errorf("writing checkpoint: %w", err)
		}
		c.notifyProgress(ProgressEvent{EventType: EventCheckpoint, Completed: completed, Total: total})
	}
	return nil
}

// runJob evaluates one job. Backend failures are recorded on the returned
// record.
func (c *Collector) runJob(ctx context.Context, job Job) models.MeasurementRecord {
	p := job.Prompt
	start := c.now()
	rec := models.MeasurementRecord{
		TaskID:    p.ID,
		TaskName:  p.Name,
		Mode:      job.Mode,
		RunNumber: job.RunNumber,
		Timestamp: start,
		Metadata: map[string]any{
			"prompt_category":   string(p.Category),
			"prompt_complexity": p.ComplexityScore,
		},
	}
	fail := func(err error) models.MeasurementRecord {
		msg := err.Error()
		rec.Error = &msg
		if rec.ResponseTime == nil {
			rec.ResponseTime = models.Float(c.now().Sub(start).Seconds())
		}
		rec.DeriveSuccess()
		slog.Warn("Evaluation failed", "task", p.ID, "mode", job.Mode, "run", job.RunNumber, "error", err)
		return rec
	}

	roomID, err := c.backend.CreateRoom(ctx)
	if err != nil {
		return fail(fmt.Errorf("creating room: %w", err))
	}
	rec.Metadata["document_id"] = roomID

	resp, err := c.backend.SendPrompt(ctx, roomID, p.Prompt, job.Mode)
	if resp != nil {
		rec.ResponseTime = models.Float(resp.Elapsed.Seconds())
		rec.ResponseContent = resp.Content
		if resp.Content != "" {
			n := c.cfg.Tokens.Count(resp.Content)
			rec.TotalTokens = &n
		}
	}
	if err != nil {
		return fail(err)
	}
	if resp.Error != "" {
		return fail(errors.New(resp.Error))
	}

	if resp.Success() {
		eval, err := c.backend.EvaluateCode(ctx, resp.Content)
		switch {
		case err != nil:
			rec.Metadata["evaluation_error"] = err.Error()
			slog.Warn("Code evaluation failed", "task", p.ID, "mode", job.Mode, "run", job.RunNumber, "error", err)
		case eval.Error != "":
			rec.Metadata["evaluation_error"] = eval.Error
			slog.Warn("Code evaluation returned an error", "task", p.ID, "mode", job.Mode, "run", job.RunNumber, "error", eval.Error)
		default:
			eval.Apply(&rec)
		}
	}

	rec.DeriveSuccess()
	return rec
}
