package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for run-level failures. Use errors.Is to check.
var (
	// ErrNoModel is returned when a run starts without a model supplied at
	// construction or per call.
	ErrNoModel = errors.New("no model configured")
	// ErrMaxRoundsExceeded is returned when the configured round limit is hit
	// before the model produced a terminal message.
	ErrMaxRoundsExceeded = errors.New("exceeded maximum model rounds")
)

// UnknownToolError reports a model call naming a tool that was never
// registered. This is a contract violation by the model or transport layer,
// not something the run recovers from.
type UnknownToolError struct {
	ToolName string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool name: %q", e.ToolName)
}

// RetryLimitError reports an exhausted retry budget. It is a configuration
// failure (retries set too low for the workload) and aborts the run.
type RetryLimitError struct {
	ToolName string
	Max      int
}

func (e *RetryLimitError) Error() string {
	return fmt.Sprintf("tool %q exceeded maximum retries (%d)", e.ToolName, e.Max)
}
