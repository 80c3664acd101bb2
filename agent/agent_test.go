package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/model"
	"github.com/agentloop/agentloop/tool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testDeps struct {
	Prefix string
}

type echoArgs struct {
	Text string `json:"text" jsonschema:"description=Text to echo"`
}

func newTextAgent(t *testing.T, m model.Model, optFns ...func(o *Options[testDeps, string])) *Agent[testDeps, string] {
	t.Helper()
	a, err := New[testDeps, string](m, optFns...)
	require.NoError(t, err)
	return a
}

func registerEcho(t *testing.T, a *Agent[testDeps, string], name string) {
	t.Helper()
	err := Register(a, name, "Echo the text back", func(tc *tool.Context[testDeps], args echoArgs) (string, error) {
		return tc.Deps.Prefix + args.Text, nil
	})
	require.NoError(t, err)
}

func TestNew_StringResultAllowsText(t *testing.T) {
	a := newTextAgent(t, model.NewScriptedModel())

	assert.True(t, a.allowText)
	assert.Nil(t, a.result)
	assert.Empty(t, a.resultToolName())
}

func TestNew_StructResultDerivesResultTool(t *testing.T) {
	type answer struct {
		Value int `json:"value"`
	}

	a, err := New[testDeps, answer](model.NewScriptedModel())
	require.NoError(t, err)

	assert.False(t, a.allowText)
	assert.Equal(t, DefaultResultToolName, a.resultToolName())

	defs := a.toolDefinitions()
	require.Len(t, defs, 1)
	assert.Equal(t, DefaultResultToolName, defs[0].Name)
	assert.Equal(t, DefaultResultToolDescription, defs[0].Description)
}

func TestRegisterTool_RejectsDuplicateName(t *testing.T) {
	a := newTextAgent(t, model.NewScriptedModel())
	registerEcho(t, a, "echo")

	err := Register(a, "echo", "Duplicate", func(tc *tool.Context[testDeps], args echoArgs) (string, error) {
		return "", nil
	})
	assert.ErrorContains(t, err, "conflicts with existing tool")
}

func TestRegisterTool_RejectsResultToolName(t *testing.T) {
	type answer struct {
		Value int `json:"value"`
	}
	a, err := New[testDeps, answer](model.NewScriptedModel())
	require.NoError(t, err)

	err = Register(a, DefaultResultToolName, "Clash", func(tc *tool.Context[testDeps], args echoArgs) (string, error) {
		return "", nil
	})
	assert.ErrorContains(t, err, "conflicts with result schema name")
}

func TestToolDefinitions_RegistrationOrderResultLast(t *testing.T) {
	type answer struct {
		Value int `json:"value"`
	}
	a, err := New[testDeps, answer](model.NewScriptedModel())
	require.NoError(t, err)

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		err := Register(a, name, "Echo", func(tc *tool.Context[testDeps], args echoArgs) (string, error) {
			return args.Text, nil
		})
		require.NoError(t, err)
	}

	var names []string
	for _, def := range a.toolDefinitions() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"charlie", "alpha", "bravo", DefaultResultToolName}, names)
}

func TestInitialMessages_StaticThenDynamic(t *testing.T) {
	a := newTextAgent(t, model.NewScriptedModel(), func(o *Options[testDeps, string]) {
		o.SystemPrompts = []string{"static"}
		o.SystemPromptFuncs = []SystemPromptFunc[testDeps]{
			func(ctx context.Context, deps testDeps) (string, error) {
				return "dynamic for " + deps.Prefix, nil
			},
		}
		o.Deps = testDeps{Prefix: "tester"}
	})

	msgs, err := a.initialMessages(context.Background(), a.defaultDeps)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, core.SystemPrompt{Content: "static"}, msgs[0])
	assert.Equal(t, core.SystemPrompt{Content: "dynamic for tester"}, msgs[1])
}

func TestRegisterPlain_RunsWithoutCallContext(t *testing.T) {
	m := model.NewScriptedModel(
		model.ToolCallTurn(core.ToolCall{ToolName: "shout", CallID: "c1", Args: core.StructuredArgs(map[string]any{"text": "hi"})}),
		model.TextTurn("done"),
	)
	a := newTextAgent(t, m)
	err := RegisterPlain(a, "shout", "Uppercase the text", func(ctx context.Context, args echoArgs) (string, error) {
		return strings.ToUpper(args.Text), nil
	})
	require.NoError(t, err)

	result, err := a.Run(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, core.ToolReturn{ToolName: "shout", CallID: "c1", Content: "HI"}, result.Messages[2])
}

func TestRenamedResultTool(t *testing.T) {
	type answer struct {
		Value int `json:"value"`
	}
	a, err := New[testDeps, answer](model.NewScriptedModel(), func(o *Options[testDeps, answer]) {
		o.ResultToolName = "submit_answer"
		o.ResultToolDescription = "Submit the final answer"
	})
	require.NoError(t, err)

	assert.Equal(t, "submit_answer", a.resultToolName())
	defs := a.toolDefinitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "Submit the final answer", defs[0].Description)
}
