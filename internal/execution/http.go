package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codecrdt/modeval/internal/models"
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	maxPollInterval     = 5 * time.Second
	pollGrowth          = 1.1
)

// HTTPBackendOptions configures an HTTPBackend.
type HTTPBackendOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	PollBudget     time.Duration
	// RequestsPerSecond limits outgoing requests; 0 means unlimited.
	RequestsPerSecond float64
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// HTTPBackend talks to the collaboration service's task and evaluation API.
type HTTPBackend struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	pollBudget time.Duration

	pollInterval    time.Duration
	maxPollInterval time.Duration
}

// NewHTTPBackend creates a backend for opts.BaseURL.
func NewHTTPBackend(opts HTTPBackendOptions) *HTTPBackend {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.RequestTimeout}
	}
	b := &HTTPBackend{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		client:          client,
		pollBudget:      opts.PollBudget,
		pollInterval:    defaultPollInterval,
		maxPollInterval: maxPollInterval,
	}
	if opts.RequestsPerSecond > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return b
}

// CreateRoom generates a room id client side; the service creates rooms on
// first use.
func (b *HTTPBackend) CreateRoom(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "eval_room_" + id[:12], nil
}

type taskStatus struct {
	Status string `mapstructure:"status"`
	Error  string `mapstructure:"error"`
}

// SendPrompt creates a generation task, polls it until it finishes and then
// reads the room text. The returned response is non-nil even when err is set,
// so callers can record the elapsed time and error.
func (b *HTTPBackend) SendPrompt(ctx context.Context, roomID, prompt string, mode models.Mode) (*PromptResponse, error) {
	start := time.Now()
	resp := &PromptResponse{RoomID: roomID, Mode: mode}
	fail := func(err error) (*PromptResponse, error) {
		resp.Error = err.Error()
		resp.Elapsed = time.Since(start)
		return resp, err
	}

	var created struct {
		TaskID string `mapstructure:"taskId"`
	}
	_, err := b.doJSON(ctx, http.MethodPost, "/api/v1/tasks", map[string]string{
		"roomId":    roomID,
		"prompt":    prompt,
		"agentName": AgentName(mode),
	}, &created)
	if err != nil {
		return fail(fmt.Errorf("creating task: %w", err))
	}
	if created.TaskID == "" {
		return fail(fmt.Errorf("creating task: response has no taskId"))
	}
	resp.TaskID = created.TaskID

	if err := b.waitForTask(ctx, created.TaskID); err != nil {
		return fail(err)
	}

	var room struct {
		Text string `mapstructure:"text"`
	}
	if _, err := b.doJSON(ctx, http.MethodGet, "/api/v1/rooms/"+roomID+"/text", nil, &room); err != nil {
		return fail(fmt.Errorf("reading room text: %w", err))
	}
	resp.Content = room.Text
	resp.Elapsed = time.Since(start)
	return resp, nil
}

// waitForTask polls the task with a growing interval. A 404 means the task
// finished and was cleaned up.
func (b *HTTPBackend) waitForTask(ctx context.Context, taskID string) error {
	deadline := time.Now().Add(b.pollBudget)
	interval := b.pollInterval

	for polls := 1; ; polls++ {
		if time.Now().Add(interval).After(deadline) {
			return fmt.Errorf("%w after %d polls", ErrPollTimeout, polls-1)
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		var st taskStatus
		code, err := b.doJSON(ctx, http.MethodGet, "/api/v1/tasks/"+taskID, nil, &st)
		if code == http.StatusNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("polling task %s: %w", taskID, err)
		}
		slog.Debug("Polled task", "task", taskID, "status", st.Status, "poll", polls)

		switch st.Status {
		case "completed":
			return nil
		case "failed":
			msg := st.Error
			if msg == "" {
				msg = "no error message"
			}
			return fmt.Errorf("%w: %s", ErrTaskFailed, msg)
		}

		interval = min(time.Duration(float64(interval)*pollGrowth), b.maxPollInterval)
	}
}

type scoreBlock struct {
	Score *float64 `mapstructure:"score"`
}

type evaluationPayload struct {
	OverallScore  *float64    `mapstructure:"overallScore"`
	CodeQuality   *scoreBlock `mapstructure:"codeQuality"`
	Architecture  *scoreBlock `mapstructure:"architectureAndState"`
	Performance   *scoreBlock `mapstructure:"runtimePerformance"`
	Accessibility *scoreBlock `mapstructure:"accessibilityAndUX"`
	Summary       string      `mapstructure:"summary"`
	Error         string      `mapstructure:"error"`
}

func (s *scoreBlock) value() *float64 {
	if s == nil {
		return nil
	}
	return s.Score
}

// EvaluateCode posts code to the evaluation endpoint. An "error" key in the
// payload is returned as CodeEvaluation.Error rather than a Go error.
func (b *HTTPBackend) EvaluateCode(ctx context.Context, code string) (*CodeEvaluation, error) {
	var p evaluationPayload
	if _, err := b.doJSON(ctx, http.MethodPost, "/api/v1/evaluation/evaluate", map[string]string{"code": code}, &p); err != nil {
		return nil, fmt.Errorf("evaluating code: %w", err)
	}
	if p.Error != "" {
		return &CodeEvaluation{Error: p.Error}, nil
	}
	return &CodeEvaluation{
		OverallScore:  p.OverallScore,
		CodeQuality:   p.CodeQuality.value(),
		Architecture:  p.Architecture.value(),
		Performance:   p.Performance.value(),
		Accessibility: p.Accessibility.value(),
		Summary:       p.Summary,
	}, nil
}

// Close releases idle connections.
func (b *HTTPBackend) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

// doJSON sends body as JSON and decodes the JSON object response into out
// with mapstructure. The status code is returned even on error.
func (b *HTTPBackend) doJSON(ctx context.Context, method, path string, body any, out any) (int, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := b.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return res.StatusCode, fmt.Errorf("%s %s: HTTP %d: %s", method, path, res.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var raw map[string]any
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return res.StatusCode, fmt.Errorf("decoding %s response: %w", path, err)
	}
	if err := mapstructure.Decode(raw, out); err != nil {
		return res.StatusCode, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return res.StatusCode, nil
}
