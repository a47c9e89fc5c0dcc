package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateFailureError(t *testing.T) {
	err := &GateFailureError{Metrics: []string{"overall_score", "response_time"}}
	assert.Equal(t, "pooled estimate invalid (I² ≥ 75%) for: overall_score, response_time", err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"gate failure", &GateFailureError{Metrics: []string{"overall_score"}}, ExitGateFailed},
		{"wrapped gate failure", fmt.Errorf("analyze: %w", &GateFailureError{}), ExitGateFailed},
		{"joined gate failure", errors.Join(&GateFailureError{}, errors.New("more")), ExitGateFailed},
		{"regular error", errors.New("config error"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

// runCLI executes the root command with args and returns its combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	err := cmd.Execute()
	return out.String(), err
}

// isolateConfig points the .modeval.yaml lookup at an empty directory.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := configDir
	configDir = dir
	t.Cleanup(func() { configDir = prev })
	return dir
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"evaluate", "analyze", "paired"})
	require.NotNil(t, cmd.PersistentFlags().Lookup("debug"))

	out, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "modeval version dev")
}
