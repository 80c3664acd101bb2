package core

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_SeedIsCopied(t *testing.T) {
	seed := []Message{SystemPrompt{Content: "sys"}, UserPrompt{Content: "hi"}}
	conv := NewConversation(seed...)

	conv.Append(ModelTextResponse{Content: "hello"})

	assert.Len(t, seed, 2, "caller-owned history must not grow")
	assert.Equal(t, 3, conv.Len())
}

func TestConversation_MessagesReturnsCopy(t *testing.T) {
	conv := NewConversation(UserPrompt{Content: "hi"})

	snapshot := conv.Messages()
	conv.Append(ModelTextResponse{Content: "hello"})

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, conv.Len())
}

func TestConversation_Last(t *testing.T) {
	conv := NewConversation()
	assert.Nil(t, conv.Last())

	conv.Append(UserPrompt{Content: "hi"}, ModelTextResponse{Content: "hello"})
	assert.Equal(t, ModelTextResponse{Content: "hello"}, conv.Last())
}

func TestRetryTracker_IncrementAndReset(t *testing.T) {
	tracker := NewRetryTracker()

	assert.Equal(t, 0, tracker.Count("get_weather"))
	assert.Equal(t, 1, tracker.Increment("get_weather"))
	assert.Equal(t, 2, tracker.Increment("get_weather"))
	assert.Equal(t, 0, tracker.Count("other_tool"), "counters are per tool")

	tracker.Reset("get_weather")
	assert.Equal(t, 0, tracker.Count("get_weather"))
}

func TestRetryTracker_ConcurrentIncrements(t *testing.T) {
	tracker := NewRetryTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Increment("tool")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tracker.Count("tool"))
}

func TestRoundLimiter_Unlimited(t *testing.T) {
	limiter := NewRoundLimiter(0)

	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Increment())
	}
	assert.Equal(t, -1, limiter.Remaining())
}

func TestRoundLimiter_EnforcesCap(t *testing.T) {
	limiter := NewRoundLimiter(2)

	require.NoError(t, limiter.Increment())
	require.NoError(t, limiter.Increment())
	assert.Equal(t, 0, limiter.Remaining())

	err := limiter.Increment()
	assert.ErrorIs(t, err, ErrMaxRoundsExceeded)
}

func TestToolArgs_JSONForm(t *testing.T) {
	args := JSONArgs(json.RawMessage(`{"city":"Berlin"}`))

	assert.True(t, args.IsJSON())

	value, err := args.Value()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Berlin"}, value)
}

func TestToolArgs_StructuredForm(t *testing.T) {
	args := StructuredArgs(map[string]any{"city": "Berlin"})

	assert.False(t, args.IsJSON())

	data, err := args.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"city":"Berlin"}`, string(data))
}

func TestToolArgs_InvalidJSONSurfacesAsError(t *testing.T) {
	args := JSONArgs(json.RawMessage(`{"city":`))

	_, err := args.Value()
	assert.Error(t, err)
}

func TestToolArgs_ZeroValue(t *testing.T) {
	var args ToolArgs

	value, err := args.Value()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, value)

	data, err := args.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestToolRetry_FeedbackRendersFieldErrors(t *testing.T) {
	retry := ToolRetry{
		ToolName: "get_weather",
		CallID:   "call-1",
		Errors: []FieldError{
			{Path: "/city", Message: "expected string, but got number"},
		},
	}

	feedback := retry.Feedback()
	assert.Contains(t, feedback, "1 validation errors:")
	assert.Contains(t, feedback, "/city")
	assert.Contains(t, feedback, "Fix the errors and try again.")
}

func TestToolRetry_FeedbackRendersContent(t *testing.T) {
	retry := ToolRetry{ToolName: "get_weather", CallID: "call-1", Content: "city not found"}

	feedback := retry.Feedback()
	assert.Contains(t, feedback, "city not found")
	assert.Contains(t, feedback, "Fix the errors and try again.")
}

func TestPlainTextForbidden_Feedback(t *testing.T) {
	var m PlainTextForbidden
	assert.Equal(t,
		"Plain text responses are not permitted, please call one of the functions instead.",
		m.Feedback())
}

func TestFieldError_Error(t *testing.T) {
	assert.Equal(t, "required", FieldError{Path: "", Message: "required"}.Error())
	assert.Equal(t, "/city: required", FieldError{Path: "/city", Message: "required"}.Error())
}

func TestUsage_Add(t *testing.T) {
	var usage Usage
	usage.Add(Usage{Requests: 1, RequestTokens: 10, ResponseTokens: 5, TotalTokens: 15})
	usage.Add(Usage{Requests: 1, RequestTokens: 7, ResponseTokens: 3, TotalTokens: 10})

	assert.Equal(t, Usage{Requests: 2, RequestTokens: 17, ResponseTokens: 8, TotalTokens: 25}, usage)
}

func TestMessage_Roles(t *testing.T) {
	assert.Equal(t, RoleSystem, SystemPrompt{}.Role())
	assert.Equal(t, RoleUser, UserPrompt{}.Role())
	assert.Equal(t, RoleModel, ModelTextResponse{}.Role())
	assert.Equal(t, RoleModel, ModelToolCalls{}.Role())
	assert.Equal(t, RoleTool, ToolReturn{}.Role())
	assert.Equal(t, RoleTool, ToolRetry{}.Role())
	assert.Equal(t, RoleSystem, PlainTextForbidden{}.Role())
}
