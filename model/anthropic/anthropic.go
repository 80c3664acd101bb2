// Package anthropic implements model.Model over the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/agentloop/agentloop/core"
	"github.com/agentloop/agentloop/model"
)

// Options configure the Anthropic model adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model
// interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	return &Model{client: client, opts: defaultOptions(optFns)}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Request implements model.Model with a non-streaming Messages call.
func (m *Model) Request(ctx context.Context, req model.Request) (*model.Response, error) {
	messages, system, err := buildMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    messages,
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	usage := core.Usage{
		Requests:       1,
		RequestTokens:  int(resp.Usage.InputTokens),
		ResponseTokens: int(resp.Usage.OutputTokens),
		TotalTokens:    int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}

	var text string
	var calls []core.ToolCall
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := json.RawMessage(`{}`)
			if toolBlock.Input != nil {
				if data, err := json.Marshal(toolBlock.Input); err == nil {
					args = data
				}
			}
			calls = append(calls, core.ToolCall{
				ToolName: toolBlock.Name,
				CallID:   toolBlock.ID,
				Args:     core.JSONArgs(args),
			})
		}
	}

	if len(calls) > 0 {
		return &model.Response{Message: core.ModelToolCalls{Calls: calls}, Usage: usage}, nil
	}
	return &model.Response{Message: core.ModelTextResponse{Content: text}, Usage: usage}, nil
}

// buildMessages converts the conversation log into Anthropic messages plus
// system blocks. Consecutive tool results collapse into a single user
// message of tool_result blocks, as the Messages API requires; retry
// feedback is marked as an error result.
func buildMessages(messages []core.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam, error) {
	var out []anthropic.MessageParam
	var system []anthropic.TextBlockParam
	var pendingResults []anthropic.ContentBlockParamUnion

	flushResults := func() {
		if len(pendingResults) > 0 {
			out = append(out, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, msg := range messages {
		switch m := msg.(type) {
		case core.SystemPrompt:
			flushResults()
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case core.UserPrompt:
			flushResults()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case core.ModelTextResponse:
			flushResults()
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case core.ModelToolCalls:
			flushResults()
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Calls))
			for _, call := range m.Calls {
				value, err := call.Args.Value()
				if err != nil {
					return nil, nil, err
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.CallID, value, call.ToolName))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		case core.ToolReturn:
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(m.CallID, m.Content, false))
		case core.ToolRetry:
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(m.CallID, m.Feedback(), true))
		case core.PlainTextForbidden:
			flushResults()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Feedback())))
		default:
			return nil, nil, fmt.Errorf("unsupported message type %T", msg)
		}
	}
	flushResults()

	return out, system, nil
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, tdef := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if tdef.Parameters != nil {
			if properties, ok := tdef.Parameters["properties"]; ok {
				inputSchema.Properties = properties
			}
			if required, ok := tdef.Parameters["required"]; ok {
				inputSchema.Required = toStringSlice(required)
			}
		}
		out[i] = anthropic.ToolUnionParamOfTool(inputSchema, tdef.Name)
	}
	return out
}

func toStringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
