package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/projectconfig"
)

//go:generate go tool mockgen -package mocks -destination mocks/mock_backend.go . Backend

// Backend is the service that generates and scores code for a prompt.
type Backend interface {
	// CreateRoom returns a fresh collaboration room id
	CreateRoom(ctx context.Context) (string, error)

	// SendPrompt asks the agents in roomID to build prompt and waits for the
	// generated content
	SendPrompt(ctx context.Context, roomID, prompt string, mode models.Mode) (*PromptResponse, error)

	// EvaluateCode scores generated code
	EvaluateCode(ctx context.Context, code string) (*CodeEvaluation, error)

	// Close releases resources
	Close() error
}

var (
	// ErrTaskFailed is returned when the backend reports the generation task
	// as failed.
	ErrTaskFailed = errors.New("task failed")

	// ErrPollTimeout is returned when a task does not finish within the poll
	// budget.
	ErrPollTimeout = errors.New("task polling timed out")
)

// PromptResponse is the outcome of one generation request.
type PromptResponse struct {
	RoomID  string
	TaskID  string
	Mode    models.Mode
	Content string
	Error   string
	Elapsed time.Duration
}

// Success reports whether content was produced without an error.
func (r *PromptResponse) Success() bool {
	return r.Error == "" && r.Content != ""
}

// CodeEvaluation holds the backend's quality scores. Scores missing from the
// payload are nil.
type CodeEvaluation struct {
	OverallScore  *float64
	CodeQuality   *float64
	Architecture  *float64
	Performance   *float64
	Accessibility *float64
	Summary       string
	Error         string
}

// Apply copies the scores onto a record.
func (e *CodeEvaluation) Apply(r *models.MeasurementRecord) {
	r.OverallScore = e.OverallScore
	r.CodeQuality = e.CodeQuality
	r.Architecture = e.Architecture
	r.Performance = e.Performance
	r.Accessibility = e.Accessibility
}

// AgentName maps a mode to the backend agent that runs it.
func AgentName(mode models.Mode) string {
	if mode == models.ModeParallel {
		return "outliner"
	}
	return "sequential"
}

// New builds the backend named by cfg.Engine.
func New(cfg projectconfig.CollectionConfig) (Backend, error) {
	switch cfg.Engine {
	case projectconfig.EngineMock:
		return NewMockBackend(), nil
	case projectconfig.EngineHTTP, "":
		return NewHTTPBackend(HTTPBackendOptions{
			BaseURL:           cfg.BackendURL,
			RequestTimeout:    time.Duration(cfg.RequestTimeoutSec) * time.Second,
			PollBudget:        time.Duration(cfg.PollBudgetSec) * time.Second,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}), nil
	}
	return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
}
