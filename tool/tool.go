// Package tool implements the registry entries a model may invoke
// mid-conversation: plain Go functions wrapped with a derived argument
// schema, a bounded retry budget, and consistent error handling. Validation
// failures and explicit ModelRetry signals become retry feedback for the
// model; everything else is fatal.
package tool

import (
	"context"
	"fmt"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/logging"
)

// Tool is a single registered capability. Implementations must be safe for
// concurrent use: one model turn may run several tools in parallel.
//
// Run executes one ToolCall and returns the message to append to the
// conversation: a ToolReturn on success, or a ToolRetry while the tool's
// retry budget (tracked in rc.Retries) is not exhausted. A non-nil error is
// fatal and aborts the run.
type Tool[D any] interface {
	// Name returns the unique tool identifier used in model call routing
	// (snake_case recommended).
	Name() string

	// Description is the natural-language summary shown to the model.
	Description() string

	// Definition returns the JSON Schema describing accepted arguments.
	Definition() map[string]any

	// Run validates the call's arguments and invokes the wrapped function.
	Run(rc RunContext[D], call core.ToolCall) (core.Message, error)
}

// RunContext carries the per-run collaborators a tool invocation needs:
// the ambient cancellation context, the shared dependency object, the run's
// retry counters and a logger. The zero Logger falls back to a no-op.
type RunContext[D any] struct {
	Context context.Context
	Deps    D
	Retries *core.RetryTracker
	Logger  logging.Logger
}

func (rc RunContext[D]) logger() logging.Logger {
	if rc.Logger == nil {
		return logging.NoOpLogger{}
	}
	return rc.Logger
}

// Context is the call-scoped value handed to context-taking tool functions.
// Retry holds how many times this tool has already produced retry feedback
// in the current run.
type Context[D any] struct {
	ctx    context.Context
	logger logging.Logger

	Deps   D
	Retry  int
	CallID string
}

// NewContext builds a call-scoped Context. The run layer uses it for result
// validators; FunctionTool builds its own per invocation. A nil logger falls
// back to a no-op.
func NewContext[D any](ctx context.Context, logger logging.Logger, deps D, retry int, callID string) *Context[D] {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context[D]{ctx: ctx, logger: logger, Deps: deps, Retry: retry, CallID: callID}
}

// Context returns the ambient context of the invocation.
func (c *Context[D]) Context() context.Context { return c.ctx }

// Logger returns the logger of the invocation.
func (c *Context[D]) Logger() logging.Logger { return c.logger }

// ModelRetry is the application-level retry signal: a tool (or result
// validator) returns it to reject the call in a way the model can correct,
// e.g. "no rows found, try a broader query". It consumes one unit of the
// relevant retry budget, exactly like a validation failure.
type ModelRetry struct {
	Message string
}

func (e *ModelRetry) Error() string { return e.Message }

// Retryf builds a ModelRetry from a format string.
func Retryf(format string, args ...any) error {
	return &ModelRetry{Message: fmt.Sprintf(format, args...)}
}

// ToolError wraps a fatal tool execution failure with a stable code for
// downstream handling.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Error codes used by FunctionTool.
const (
	CodeArgumentError  = "ARGUMENT_ERROR"
	CodeExecutionError = "EXECUTION_ERROR"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}
