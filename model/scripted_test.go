package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentloop/agentloop/core"
)

func TestScriptedModel_ReplaysTurnsInOrder(t *testing.T) {
	m := NewScriptedModel(
		ToolCallTurn(core.ToolCall{ToolName: "get_weather"}),
		TextTurn("sunny"),
	)

	resp, err := m.Request(context.Background(), Request{})
	require.NoError(t, err)
	calls, ok := resp.Message.(core.ModelToolCalls)
	require.True(t, ok)
	require.Len(t, calls.Calls, 1)
	assert.NotEmpty(t, calls.Calls[0].CallID, "missing call IDs are generated")

	resp, err = m.Request(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, core.ModelTextResponse{Content: "sunny"}, resp.Message)

	_, err = m.Request(context.Background(), Request{})
	assert.Error(t, err, "script exhaustion fails loudly")
}

func TestScriptedModel_RecordsRequests(t *testing.T) {
	m := NewScriptedModel(TextTurn("ok"))

	_, err := m.Request(context.Background(), Request{
		Messages:  []core.Message{core.UserPrompt{Content: "hi"}},
		AllowText: true,
	})
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, reqs[0].AllowText)
	require.Len(t, reqs[0].Messages, 1)
}

func TestScriptedModel_ErrTurn(t *testing.T) {
	transport := errors.New("connection reset")
	m := NewScriptedModel(Turn{Err: transport})

	_, err := m.Request(context.Background(), Request{})
	assert.ErrorIs(t, err, transport)
}

func TestFunc_AdaptsOrdinaryFunction(t *testing.T) {
	m := Func(func(ctx context.Context, req Request) (*Response, error) {
		return &Response{Message: core.ModelTextResponse{Content: "from func"}}, nil
	})

	resp, err := m.Request(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, core.ModelTextResponse{Content: "from func"}, resp.Message)
	assert.Equal(t, "local", m.Info().Provider)
}

func TestScriptedModel_CountsRequestsInUsage(t *testing.T) {
	m := NewScriptedModel(Turn{
		Message: core.ModelTextResponse{Content: "ok"},
		Usage:   core.Usage{RequestTokens: 10, ResponseTokens: 2, TotalTokens: 12},
	})

	resp, err := m.Request(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Usage.Requests)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
}
