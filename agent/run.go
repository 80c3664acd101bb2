package agent

import (
	"context"
	"fmt"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/model"
)

// RunOptions configure a single run.
type RunOptions[D any] struct {
	// History seeds the conversation verbatim (shallow copy) instead of the
	// agent's system prompts. Dynamic system prompt functions do not run.
	History []core.Message

	// Model overrides the agent's model for this run.
	Model model.Model

	// Deps overrides the agent's default dependency object for this run.
	Deps *D
}

// RunResult is the outcome of a completed run.
type RunResult[R any] struct {
	// Data is the terminal value: the free-text answer or the validated
	// structured result.
	Data R

	// Messages is the full conversation log, including the terminal turn.
	Messages []core.Message

	// Usage aggregates token counts across all model requests of the run.
	Usage core.Usage
}

// runState is the per-run mutable state threaded through turn handling.
// Tool retry counters live in retries; resultRetry is the run-level result
// validation counter, never reset mid-run.
type runState[D any] struct {
	ctx         context.Context
	deps        D
	retries     *core.RetryTracker
	resultRetry int
}

// Run drives the conversation loop: request a model turn, handle it, repeat
// until a terminal value is produced or a fatal error aborts the run.
//
// Recoverable failures (argument validation, ModelRetry signals) never abort:
// they become feedback messages and the loop continues. Fatal errors (unknown
// tool name, exhausted retry budget, tool execution errors, transport
// failures, the optional round cap) abort with no partial result.
func (a *Agent[D, R]) Run(ctx context.Context, userPrompt string, optFns ...func(o *RunOptions[D])) (*RunResult[R], error) {
	opts := RunOptions[D]{}
	for _, fn := range optFns {
		fn(&opts)
	}

	m := opts.Model
	if m == nil {
		m = a.model
	}
	if m == nil {
		return nil, core.ErrNoModel
	}

	deps := a.defaultDeps
	if opts.Deps != nil {
		deps = *opts.Deps
	}

	var conv *core.Conversation
	if opts.History != nil {
		conv = core.NewConversation(opts.History...)
	} else {
		seed, err := a.initialMessages(ctx, deps)
		if err != nil {
			return nil, err
		}
		conv = core.NewConversation(seed...)
	}
	conv.Append(core.UserPrompt{Content: userPrompt})

	state := &runState[D]{
		ctx:     ctx,
		deps:    deps,
		retries: core.NewRetryTracker(),
	}
	defs := a.toolDefinitions()
	limiter := core.NewRoundLimiter(a.maxRounds)
	var usage core.Usage

	a.logger.Info("agent.run.start",
		"model", m.Info().Name, "tools", len(a.toolOrder), "history", opts.History != nil)

	for {
		if err := limiter.Increment(); err != nil {
			return nil, fmt.Errorf("%w (%d rounds)", err, a.maxRounds)
		}

		resp, err := m.Request(ctx, model.Request{
			Messages:       conv.Messages(),
			Tools:          defs,
			AllowText:      a.allowText,
			ResultToolName: a.resultToolName(),
		})
		if err != nil {
			return nil, fmt.Errorf("model request: %w", err)
		}
		usage.Add(resp.Usage)

		result, done, err := a.handleTurn(state, conv, resp.Message)
		if err != nil {
			return nil, err
		}
		if done {
			a.logger.Info("agent.run.complete",
				"rounds", limiter.Count(), "messages", conv.Len(), "total_tokens", usage.TotalTokens)
			return &RunResult[R]{Data: result, Messages: conv.Messages(), Usage: usage}, nil
		}
	}
}

// handleTurn is the single-turn state machine: it appends the model's turn,
// decides between a terminal value and another round, and appends whatever
// feedback or tool results that decision produces.
func (a *Agent[D, R]) handleTurn(
	state *runState[D],
	conv *core.Conversation,
	msg core.ModelMessage,
) (R, bool, error) {
	var zero R
	conv.Append(msg)

	switch m := msg.(type) {
	case core.ModelTextResponse:
		if a.allowText {
			result, ok := textAsResult[R](m.Content)
			if !ok {
				return zero, false, fmt.Errorf("text result requested for non-string result type")
			}
			return result, true, nil
		}
		a.logger.Debug("agent.turn.plain_text_forbidden")
		conv.Append(core.PlainTextForbidden{})
		return zero, false, nil

	case core.ModelToolCalls:
		return a.handleToolCalls(state, conv, m.Calls)

	default:
		return zero, false, fmt.Errorf("unsupported model message type %T", msg)
	}
}

// handleToolCalls processes a tool-calls turn. A call naming the result tool
// is authoritative; what happens to its siblings is governed by the
// ExecuteSiblingCalls option. All other turns dispatch every call.
func (a *Agent[D, R]) handleToolCalls(
	state *runState[D],
	conv *core.Conversation,
	calls []core.ToolCall,
) (R, bool, error) {
	var zero R

	if a.result != nil {
		if idx := indexOfCall(calls, a.result.name); idx >= 0 {
			return a.handleResultCall(state, conv, calls, idx)
		}
	}

	messages, err := a.dispatchCalls(state, calls)
	if err != nil {
		return zero, false, err
	}
	conv.Append(messages...)
	return zero, false, nil
}

// handleResultCall validates the result call and optionally executes the
// other calls of the same turn. A recoverable validation failure consumes one
// unit of the run-level result budget and continues the loop; past the budget
// it is fatal.
func (a *Agent[D, R]) handleResultCall(
	state *runState[D],
	conv *core.Conversation,
	calls []core.ToolCall,
	resultIdx int,
) (R, bool, error) {
	var zero R
	call := calls[resultIdx]

	value, retryMsg, err := a.validateResult(state, call)
	if err != nil {
		return zero, false, err
	}

	var siblingMessages []core.Message
	if a.executeSiblings && len(calls) > 1 {
		siblings := make([]core.ToolCall, 0, len(calls)-1)
		siblings = append(siblings, calls[:resultIdx]...)
		siblings = append(siblings, calls[resultIdx+1:]...)
		siblingMessages, err = a.dispatchCalls(state, siblings)
		if err != nil {
			return zero, false, err
		}
	} else if len(calls) > 1 {
		a.logger.Debug("agent.turn.sibling_calls_ignored",
			"result_tool", a.result.name, "ignored", len(calls)-1)
	}

	if retryMsg != nil {
		state.resultRetry++
		if state.resultRetry > a.maxResultRetries {
			return zero, false, &core.RetryLimitError{ToolName: a.result.name, Max: a.maxResultRetries}
		}
		a.logger.Warn("agent.turn.result_retry",
			"result_tool", a.result.name, "retry", state.resultRetry)
		conv.Append(*retryMsg)
		conv.Append(siblingMessages...)
		return zero, false, nil
	}

	conv.Append(siblingMessages...)
	return value, true, nil
}

func indexOfCall(calls []core.ToolCall, name string) int {
	for i, call := range calls {
		if call.ToolName == name {
			return i
		}
	}
	return -1
}
