package agent

import (
	"errors"
	"reflect"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/schema"
	"github.com/agentloop/agentloop/tool"
)

// resultSchema is the distinguished final-result tool: it validates the
// model's terminal output instead of invoking a user function.
type resultSchema[R any] struct {
	name        string
	description string
	schema      *schema.Schema
}

// newResultSchema derives the result tool for R. A string kind yields no
// result tool and permits plain-text results.
func newResultSchema[R any](name, description string) (*resultSchema[R], bool, error) {
	t := reflect.TypeFor[R]()
	if t.Kind() == reflect.String {
		return nil, true, nil
	}
	s, err := schema.For[R]()
	if err != nil {
		return nil, false, err
	}
	return &resultSchema[R]{name: name, description: description, schema: s}, false, nil
}

// validate structurally checks the call arguments and binds them onto R.
// A recoverable failure returns the ToolRetry to append; the caller owns the
// run-level result retry counter.
func (s *resultSchema[R]) validate(call core.ToolCall) (R, *core.ToolRetry, error) {
	var zero R

	value, fieldErrs, err := s.schema.Check(call.Args)
	if err != nil {
		return zero, nil, err
	}
	if len(fieldErrs) > 0 {
		return zero, &core.ToolRetry{ToolName: call.ToolName, CallID: call.CallID, Errors: fieldErrs}, nil
	}

	out, err := schema.Decode[R](value)
	if err != nil {
		return zero, &core.ToolRetry{ToolName: call.ToolName, CallID: call.CallID, Content: err.Error()}, nil
	}
	return out, nil, nil
}

// validateResult runs structural validation and then the validator chain,
// sequentially, each stage receiving the previous stage's (possibly
// transformed) value.
func (a *Agent[D, R]) validateResult(state *runState[D], call core.ToolCall) (R, *core.ToolRetry, error) {
	var zero R

	value, retryMsg, err := a.result.validate(call)
	if err != nil || retryMsg != nil {
		return zero, retryMsg, err
	}

	for _, validate := range a.resultValidators {
		tc := tool.NewContext(state.ctx, a.logger, state.deps, state.resultRetry, call.CallID)
		next, err := validate(tc, value)
		if err != nil {
			var retry *tool.ModelRetry
			if errors.As(err, &retry) {
				return zero, &core.ToolRetry{
					ToolName: call.ToolName,
					CallID:   call.CallID,
					Content:  retry.Message,
				}, nil
			}
			return zero, nil, err
		}
		value = next
	}
	return value, nil, nil
}

// textAsResult converts a free-text turn into R when R is a string kind.
func textAsResult[R any](content string) (R, bool) {
	var out R
	v := reflect.ValueOf(&out).Elem()
	if v.Kind() == reflect.String {
		v.SetString(content)
		return out, true
	}
	return out, false
}
