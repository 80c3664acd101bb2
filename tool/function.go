package tool

import (
	"context"
	"errors"
	"time"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/schema"
)

// Func is a context-taking tool function: it receives the call Context
// (deps, current retry count, call id) ahead of its typed arguments.
type Func[D, A any] func(tc *Context[D], args A) (string, error)

// PlainFunc is a tool function that needs no call context beyond the ambient
// context.Context.
type PlainFunc[A any] func(ctx context.Context, args A) (string, error)

// Options configure a FunctionTool at construction.
type Options struct {
	// MaxRetries bounds how many recoverable failures (validation errors,
	// ModelRetry signals) the tool may produce per run before the next one
	// becomes fatal.
	MaxRetries int
}

// FunctionTool adapts a plain Go function into a Tool. The argument type's
// schema is derived once at construction; whether the function takes a call
// Context is resolved here too, not dispatched per call.
//
// A FunctionTool has no mutable state after construction: retry counters live
// in the per-run RetryTracker, so the same instance can serve concurrent runs.
type FunctionTool[D any] struct {
	name        string
	description string
	schema      *schema.Schema
	maxRetries  int
	invoke      func(tc *Context[D], value any) (string, error)
}

// New builds a FunctionTool from a context-taking function. The schema is
// derived from the argument struct type A.
//
// Example:
//
//	type RollArgs struct {
//		Sides int `json:"sides" jsonschema:"description=Number of die faces"`
//	}
//
//	roll, err := tool.New("roll_die", "Roll a die", func(tc *tool.Context[Deps], args RollArgs) (string, error) {
//		return strconv.Itoa(tc.Deps.RNG.Intn(args.Sides) + 1), nil
//	})
func New[D, A any](name, description string, fn Func[D, A], optFns ...func(o *Options)) (*FunctionTool[D], error) {
	return newFunctionTool[D, A](name, description, func(tc *Context[D], args A) (string, error) {
		return fn(tc, args)
	}, optFns)
}

// NewPlain builds a FunctionTool from a function that takes no call context.
func NewPlain[D, A any](name, description string, fn PlainFunc[A], optFns ...func(o *Options)) (*FunctionTool[D], error) {
	return newFunctionTool[D, A](name, description, func(tc *Context[D], args A) (string, error) {
		return fn(tc.Context(), args)
	}, optFns)
}

func newFunctionTool[D, A any](
	name, description string,
	fn Func[D, A],
	optFns []func(o *Options),
) (*FunctionTool[D], error) {
	opts := Options{MaxRetries: 1}
	for _, fn := range optFns {
		fn(&opts)
	}

	s, err := schema.For[A]()
	if err != nil {
		return nil, err
	}

	return &FunctionTool[D]{
		name:        name,
		description: description,
		schema:      s,
		maxRetries:  opts.MaxRetries,
		invoke: func(tc *Context[D], value any) (string, error) {
			args, err := schema.Decode[A](value)
			if err != nil {
				return "", err
			}
			return fn(tc, args)
		},
	}, nil
}

// Name returns the unique tool name used in model call routing.
func (t *FunctionTool[D]) Name() string { return t.name }

// Description returns the summary exposed to the model.
func (t *FunctionTool[D]) Description() string { return t.description }

// Definition returns the JSON Schema describing the accepted arguments.
func (t *FunctionTool[D]) Definition() map[string]any { return t.schema.Definition() }

// MaxRetries returns the configured retry budget.
func (t *FunctionTool[D]) MaxRetries() int { return t.maxRetries }

// Run validates the call's arguments, invokes the wrapped function and maps
// the outcome onto the conversation message to append.
//
// Outcome mapping:
//
//	validation field errors -> ToolRetry (budget permitting)
//	*ModelRetry from fn     -> ToolRetry with the signal text (same budget)
//	budget exhausted        -> *core.RetryLimitError, fatal
//	other error from fn     -> *ToolError{Code: EXECUTION_ERROR}, fatal
//	success                 -> ToolReturn, counter reset to zero
func (t *FunctionTool[D]) Run(rc RunContext[D], call core.ToolCall) (core.Message, error) {
	logger := rc.logger()
	start := time.Now()

	logger.Debug("tool.run.start", "tool", t.name, "call_id", call.CallID)

	value, fieldErrs, err := t.schema.Check(call.Args)
	if err != nil {
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: CodeArgumentError}
	}
	if len(fieldErrs) > 0 {
		logger.Warn("tool.run.validation_failed",
			"tool", t.name, "call_id", call.CallID, "errors", len(fieldErrs))
		return t.retryMessage(rc, call, fieldErrs, "")
	}

	tc := &Context[D]{
		ctx:    rc.Context,
		logger: logger,
		Deps:   rc.Deps,
		Retry:  rc.Retries.Count(t.name),
		CallID: call.CallID,
	}

	content, err := t.invoke(tc, value)
	if err != nil {
		var retry *ModelRetry
		if errors.As(err, &retry) {
			logger.Warn("tool.run.model_retry", "tool", t.name, "call_id", call.CallID, "reason", retry.Message)
			return t.retryMessage(rc, call, nil, retry.Message)
		}

		logger.Error("tool.run.error", "tool", t.name, "call_id", call.CallID, "error", err.Error())

		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return nil, toolErr
		}
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecutionError}
	}

	rc.Retries.Reset(t.name)
	logger.Info("tool.run.success", "tool", t.name, "call_id", call.CallID, "duration_ms", time.Since(start).Milliseconds())

	return core.ToolReturn{ToolName: call.ToolName, CallID: call.CallID, Content: content}, nil
}

// retryMessage consumes one unit of the retry budget and produces the
// ToolRetry to append, or fails fatally once the budget is exhausted.
func (t *FunctionTool[D]) retryMessage(
	rc RunContext[D],
	call core.ToolCall,
	fieldErrs []core.FieldError,
	reason string,
) (core.Message, error) {
	count := rc.Retries.Increment(t.name)
	if count > t.maxRetries {
		return nil, &core.RetryLimitError{ToolName: t.name, Max: t.maxRetries}
	}
	return core.ToolRetry{
		ToolName: call.ToolName,
		CallID:   call.CallID,
		Errors:   fieldErrs,
		Content:  reason,
	}, nil
}
