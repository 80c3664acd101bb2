package model

import (
	"context"

	"github.com/agentloop/agentloop/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (minimal subset, provider agnostic).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the normalized model input for one round: the conversation
// snapshot plus the tool surface the model may use this run.
type Request struct {
	Messages []core.Message   `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`

	// AllowText reports whether a free-text turn is an acceptable terminal
	// form for this run. Adapters may use it to force tool choice.
	AllowText bool `json:"allow_text"`

	// ResultToolName names the distinguished final-result tool, or "" when
	// free text is the result.
	ResultToolName string `json:"result_tool_name,omitempty"`
}

// Response is one model turn. Message is always one of the two turn shapes:
// core.ModelTextResponse or core.ModelToolCalls.
type Response struct {
	Message core.ModelMessage `json:"message"`
	Usage   core.Usage        `json:"usage"`
}

// Model is the transport contract the run loop drives. Implementations
// translate the conversation into provider wire formats and back.
type Model interface {
	Request(ctx context.Context, req Request) (*Response, error)

	// Info returns metadata about the model implementation.
	Info() Info
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Func adapts an ordinary function to the Model interface.
type Func func(ctx context.Context, req Request) (*Response, error)

// Request implements Model.
func (f Func) Request(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Info implements Model.
func (f Func) Info() Info {
	return Info{Name: "func", Provider: "local", SupportsTools: true}
}
