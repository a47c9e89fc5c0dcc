package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Analysis completed
	ExitGateFailed = 1 // A pooled estimate failed the heterogeneity gate
	ExitError      = 2 // Configuration or runtime error
)

// GateFailureError indicates that the analysis ran successfully, but at least
// one paired metric could not be pooled and the caller asked to fail on it.
type GateFailureError struct {
	Metrics []string
}

func (e *GateFailureError) Error() string {
	return fmt.Sprintf("pooled estimate invalid (I² ≥ 75%%) for: %s", strings.Join(e.Metrics, ", "))
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var gateErr *GateFailureError
	if errors.As(err, &gateErr) {
		return ExitGateFailed
	}
	return ExitError
}
