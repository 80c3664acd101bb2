package agent

import (
	"context"
	"fmt"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/logging"
	"github.com/agentloop/agentloop/model"
	"github.com/agentloop/agentloop/tool"
)

// Default identity of the distinguished result tool.
const (
	DefaultResultToolName        = "final_result"
	DefaultResultToolDescription = "The final response which ends this conversation"
)

// SystemPromptFunc produces a dynamic system prompt. Registered functions run
// once per run, in registration order, before the first user message. They do
// not run again when the caller supplies message history.
type SystemPromptFunc[D any] func(ctx context.Context, deps D) (string, error)

// ResultValidatorFunc inspects (and may transform) a candidate result after
// structural validation. Returning a *tool.ModelRetry rejects the result and
// feeds the message back to the model, consuming one unit of the run's result
// retry budget; any other error is fatal.
type ResultValidatorFunc[D, R any] func(tc *tool.Context[D], value R) (R, error)

// Options configure an Agent at construction.
type Options[D, R any] struct {
	// SystemPrompts are static instructions placed before the first user
	// message of a fresh run.
	SystemPrompts []string

	// SystemPromptFuncs are dynamic instructions evaluated once per run.
	SystemPromptFuncs []SystemPromptFunc[D]

	// Deps is the default dependency object handed to tools and validators;
	// a run may override it.
	Deps D

	// ResultToolName and ResultToolDescription identify the result tool when
	// R is structured.
	ResultToolName        string
	ResultToolDescription string

	// ResultRetries bounds recoverable result-validation failures across the
	// whole run. The counter is never reset mid-run.
	ResultRetries int

	// ResultValidators run sequentially, in order, after structural result
	// validation.
	ResultValidators []ResultValidatorFunc[D, R]

	// MaxRounds caps model rounds per run. 0 means unbounded, matching the
	// classic loop; set it as a safety valve against non-converging models.
	MaxRounds int

	// MaxParallelCalls caps concurrent tool invocations within one model
	// turn. 0 means one goroutine per call.
	MaxParallelCalls int

	// ExecuteSiblingCalls controls what happens to the other tool calls of a
	// turn that also names the result tool. Default false: the result call
	// is authoritative and the siblings are silently ignored. When true the
	// siblings run too and their results are appended in call order.
	ExecuteSiblingCalls bool

	// Logger receives structured run/dispatch/tool events. Defaults to no-op.
	Logger logging.Logger
}

// Agent owns the tool registry, the result schema and the run driver. Exposed
// configuration is immutable after construction; all run state (conversation,
// retry counters) is per-run, so one Agent instance serves concurrent runs.
type Agent[D, R any] struct {
	model            model.Model
	tools            map[string]tool.Tool[D]
	toolOrder        []string
	systemPrompts    []string
	systemPromptFns  []SystemPromptFunc[D]
	resultValidators []ResultValidatorFunc[D, R]
	result           *resultSchema[R]
	allowText        bool
	defaultDeps      D
	maxResultRetries int
	maxRounds        int
	maxParallel      int
	executeSiblings  bool
	logger           logging.Logger
}

// New constructs an Agent around a model. The model may be nil if every run
// supplies one. The result tool is derived from R here: a string kind means
// plain-text results and no result tool.
func New[D, R any](m model.Model, optFns ...func(o *Options[D, R])) (*Agent[D, R], error) {
	opts := Options[D, R]{
		ResultToolName:        DefaultResultToolName,
		ResultToolDescription: DefaultResultToolDescription,
		ResultRetries:         1,
		Logger:                logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	result, allowText, err := newResultSchema[R](opts.ResultToolName, opts.ResultToolDescription)
	if err != nil {
		return nil, err
	}

	return &Agent[D, R]{
		model:            m,
		tools:            make(map[string]tool.Tool[D]),
		systemPrompts:    opts.SystemPrompts,
		systemPromptFns:  opts.SystemPromptFuncs,
		resultValidators: opts.ResultValidators,
		result:           result,
		allowText:        allowText,
		defaultDeps:      opts.Deps,
		maxResultRetries: opts.ResultRetries,
		maxRounds:        opts.MaxRounds,
		maxParallel:      opts.MaxParallelCalls,
		executeSiblings:  opts.ExecuteSiblingCalls,
		logger:           opts.Logger,
	}, nil
}

// RegisterTool adds a tool to the registry. Names must be unique within the
// agent and distinct from the result tool name.
func (a *Agent[D, R]) RegisterTool(t tool.Tool[D]) error {
	name := t.Name()
	if a.result != nil && a.result.name == name {
		return fmt.Errorf("tool name conflicts with result schema name: %q", name)
	}
	if _, exists := a.tools[name]; exists {
		return fmt.Errorf("tool name conflicts with existing tool: %q", name)
	}
	a.tools[name] = t
	a.toolOrder = append(a.toolOrder, name)
	return nil
}

// Register wraps a context-taking function as a tool and registers it.
func Register[D, R, A any](
	a *Agent[D, R],
	name, description string,
	fn tool.Func[D, A],
	optFns ...func(o *tool.Options),
) error {
	t, err := tool.New(name, description, fn, optFns...)
	if err != nil {
		return err
	}
	return a.RegisterTool(t)
}

// RegisterPlain wraps a plain function as a tool and registers it.
func RegisterPlain[D, R, A any](
	a *Agent[D, R],
	name, description string,
	fn tool.PlainFunc[A],
	optFns ...func(o *tool.Options),
) error {
	t, err := tool.NewPlain[D](name, description, fn, optFns...)
	if err != nil {
		return err
	}
	return a.RegisterTool(t)
}

// resultToolName returns the configured result tool name, or "" when free
// text is the result.
func (a *Agent[D, R]) resultToolName() string {
	if a.result == nil {
		return ""
	}
	return a.result.name
}

// toolDefinitions lists the tool surface in registration order, result tool
// last.
func (a *Agent[D, R]) toolDefinitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(a.toolOrder)+1)
	for _, name := range a.toolOrder {
		t := a.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Definition(),
		})
	}
	if a.result != nil {
		defs = append(defs, model.ToolDefinition{
			Name:        a.result.name,
			Description: a.result.description,
			Parameters:  a.result.schema.Definition(),
		})
	}
	return defs
}

// initialMessages seeds a fresh conversation: static system prompts first,
// then dynamic prompt functions in registration order.
func (a *Agent[D, R]) initialMessages(ctx context.Context, deps D) ([]core.Message, error) {
	messages := make([]core.Message, 0, len(a.systemPrompts)+len(a.systemPromptFns))
	for _, prompt := range a.systemPrompts {
		messages = append(messages, core.SystemPrompt{Content: prompt})
	}
	for _, fn := range a.systemPromptFns {
		prompt, err := fn(ctx, deps)
		if err != nil {
			return nil, fmt.Errorf("system prompt function: %w", err)
		}
		messages = append(messages, core.SystemPrompt{Content: prompt})
	}
	return messages, nil
}
