package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/tool"
)

// dispatchCalls executes a batch of tool calls, possibly in parallel, and
// returns the result messages in call-declaration order regardless of
// completion order.
//
// Every call must name a registered tool; an unknown name is fatal and
// resolved before anything runs, so no partial batch starts. Failure policy
// is wait-for-all: every launched call finishes, then the first fatal error
// in call order is reported. Siblings are not cancelled beyond the ambient
// context.
func (a *Agent[D, R]) dispatchCalls(state *runState[D], calls []core.ToolCall) ([]core.Message, error) {
	n := len(calls)
	if n == 0 {
		return nil, nil
	}

	tools := make([]tool.Tool[D], n)
	for i, call := range calls {
		t, ok := a.tools[call.ToolName]
		if !ok {
			return nil, &core.UnknownToolError{ToolName: call.ToolName}
		}
		tools[i] = t
	}

	rc := tool.RunContext[D]{
		Context: state.ctx,
		Deps:    state.deps,
		Retries: state.retries,
		Logger:  a.logger,
	}

	// Fast path: single call, execute inline.
	if n == 1 {
		msg, err := a.runCall(rc, tools[0], calls[0])
		if err != nil {
			return nil, err
		}
		return []core.Message{msg}, nil
	}

	maxPar := a.maxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	type callResult struct {
		msg core.Message
		err error
	}

	results := make([]callResult, n)
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range calls {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			msg, err := a.runCall(rc, tools[idx], calls[idx])
			results[idx] = callResult{msg: msg, err: err}
		}(i)
	}
	wg.Wait()

	out := make([]core.Message, n)
	for i, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		out[i] = res.msg
	}

	a.logger.Debug("agent.calls.batch_complete",
		"count", n, "parallelism", maxPar, "duration_ms", time.Since(batchStart).Milliseconds())

	return out, nil
}

// runCall invokes one tool with panic safety: a panicking tool surfaces as a
// fatal execution error instead of tearing down the run loop.
func (a *Agent[D, R]) runCall(
	rc tool.RunContext[D],
	t tool.Tool[D],
	call core.ToolCall,
) (msg core.Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("agent.call.panic", "tool", call.ToolName, "recover", fmt.Sprint(r))
			err = &tool.ToolError{
				Tool:    call.ToolName,
				Message: fmt.Sprintf("panic: %v", r),
				Code:    tool.CodeExecutionError,
			}
		}
	}()
	return t.Run(rc, call)
}
