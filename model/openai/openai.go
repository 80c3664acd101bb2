// Package openai implements model.Model over the OpenAI Chat Completions
// API (function/tool calling included). It adapts the normalized message
// union into the SDK's message format and back.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/model"
)

// Options configure the OpenAI model adapter. Fields mirror a minimal subset
// of Chat Completion parameters; extend via functional options.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic
// model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client with ambient
// credentials (OPENAI_API_KEY).
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Request implements model.Model with a non-streaming completion.
func (m *Model) Request(ctx context.Context, req model.Request) (*model.Response, error) {
	params, err := m.buildParams(req)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: no choices returned")
	}

	usage := core.Usage{
		Requests:       1,
		RequestTokens:  int(resp.Usage.PromptTokens),
		ResponseTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:    int(resp.Usage.TotalTokens),
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) > 0 {
		calls := make([]core.ToolCall, 0, len(choice.Message.ToolCalls))
		for _, tc := range choice.Message.ToolCalls {
			calls = append(calls, core.ToolCall{
				ToolName: tc.Function.Name,
				CallID:   tc.ID,
				Args:     core.JSONArgs(json.RawMessage(tc.Function.Arguments)),
			})
		}
		return &model.Response{Message: core.ModelToolCalls{Calls: calls}, Usage: usage}, nil
	}

	return &model.Response{
		Message: core.ModelTextResponse{Content: choice.Message.Content},
		Usage:   usage,
	}, nil
}

func (m *Model) buildParams(req model.Request) (openai.ChatCompletionNewParams, error) {
	messages, err := buildMessages(req.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if len(req.Tools) == 0 {
		return params, nil
	}

	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Name,
				Description: openai.String(tdef.Description),
				Parameters:  tdef.Parameters,
			},
		}
	}
	params.Tools = tools

	return params, nil
}

// buildMessages converts the conversation log into OpenAI chat messages.
// Tool results keep their call id so the provider can correlate them with
// the assistant turn that requested them.
func buildMessages(messages []core.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch m := msg.(type) {
		case core.SystemPrompt:
			out = append(out, openai.SystemMessage(m.Content))
		case core.UserPrompt:
			out = append(out, openai.UserMessage(m.Content))
		case core.ModelTextResponse:
			out = append(out, openai.AssistantMessage(m.Content))
		case core.ModelToolCalls:
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(m.Calls))
			for _, call := range m.Calls {
				args, err := call.Args.JSON()
				if err != nil {
					return nil, err
				}
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   call.CallID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.ToolName,
						Arguments: string(args),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				},
			})
		case core.ToolReturn:
			out = append(out, openai.ToolMessage(m.Content, m.CallID))
		case core.ToolRetry:
			out = append(out, openai.ToolMessage(m.Feedback(), m.CallID))
		case core.PlainTextForbidden:
			out = append(out, openai.UserMessage(m.Feedback()))
		default:
			return nil, fmt.Errorf("unsupported message type %T", msg)
		}
	}
	return out, nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}
