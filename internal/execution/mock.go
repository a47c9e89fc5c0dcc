package execution

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/codecrdt/modeval/internal/models"
)

// MockBackend is a deterministic backend for running without a live service.
// Scores depend only on the length of the evaluated code.
type MockBackend struct {
	// Delay is added to each SendPrompt call.
	Delay time.Duration

	rooms atomic.Int64
}

// NewMockBackend creates a mock backend with no delay.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) CreateRoom(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("mock_room_%d", m.rooms.Add(1)), nil
}

func (m *MockBackend) SendPrompt(ctx context.Context, roomID, prompt string, mode models.Mode) (*PromptResponse, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	title := prompt
	if len(title) > 50 {
		title = title[:50]
	}
	content := fmt.Sprintf(`// Generated code for: %s...
import React from 'react';

const MockComponent: React.FC = () => {
  return (
    <div className="mock-component">
      <h1>Mock Component</h1>
      <p>Built by the %s agent.</p>
    </div>
  );
};

export default MockComponent;`, title, AgentName(mode))

	return &PromptResponse{
		RoomID:  roomID,
		TaskID:  "mock_" + roomID,
		Mode:    mode,
		Content: content,
		Elapsed: m.Delay,
	}, nil
}

// EvaluateCode scores code as 75 + U(-5, 20), with each sub-score within 5
// points of the overall score.
func (m *MockBackend) EvaluateCode(ctx context.Context, code string) (*CodeEvaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(int64(len(code))))
	uniform := func(lo, hi float64) float64 { return lo + (hi-lo)*rng.Float64() }

	base := 75 + uniform(-5, 20)
	sub := func() *float64 { return models.Float(base + uniform(-5, 5)) }
	return &CodeEvaluation{
		OverallScore:  models.Float(base),
		CodeQuality:   sub(),
		Architecture:  sub(),
		Performance:   sub(),
		Accessibility: sub(),
		Summary:       "Mock evaluation: code shows good structure with room for improvement.",
	}, nil
}

func (m *MockBackend) Close() error {
	return nil
}
