// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversation logs and tool calls. These
// helpers are intentionally minimal and not intended for production usage.
package testutil

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/agentloop/agentloop/core"
)

// Call constructs a tool call with JSON-text arguments and a fresh call ID.
func Call(toolName, args string) core.ToolCall {
	return core.ToolCall{
		ToolName: toolName,
		CallID:   uuid.NewString(),
		Args:     core.JSONArgs(json.RawMessage(args)),
	}
}

// CallWithID is Call with a fixed call ID for assertions that match on it.
func CallWithID(toolName, callID, args string) core.ToolCall {
	return core.ToolCall{
		ToolName: toolName,
		CallID:   callID,
		Args:     core.JSONArgs(json.RawMessage(args)),
	}
}

// StructuredCall constructs a tool call whose arguments arrive pre-decoded,
// the way some provider transports deliver them.
func StructuredCall(toolName string, fields map[string]any) core.ToolCall {
	return core.ToolCall{
		ToolName: toolName,
		CallID:   uuid.NewString(),
		Args:     core.StructuredArgs(fields),
	}
}

// ConversationBuilder provides a fluent helper for constructing message logs
// in tests. Example:
//
//	msgs := NewConversationBuilder().System("be brief").User("hi").Build()
//
// Chain only the parts you need.
type ConversationBuilder struct {
	messages []core.Message
}

// NewConversationBuilder creates an empty builder.
func NewConversationBuilder() *ConversationBuilder { return &ConversationBuilder{} }

// System appends a system prompt (chainable).
func (b *ConversationBuilder) System(content string) *ConversationBuilder {
	b.messages = append(b.messages, core.SystemPrompt{Content: content})
	return b
}

// User appends a user prompt (chainable).
func (b *ConversationBuilder) User(content string) *ConversationBuilder {
	b.messages = append(b.messages, core.UserPrompt{Content: content})
	return b
}

// ModelText appends a free-text model turn (chainable).
func (b *ConversationBuilder) ModelText(content string) *ConversationBuilder {
	b.messages = append(b.messages, core.ModelTextResponse{Content: content})
	return b
}

// ModelCalls appends a tool-call model turn (chainable).
func (b *ConversationBuilder) ModelCalls(calls ...core.ToolCall) *ConversationBuilder {
	b.messages = append(b.messages, core.ModelToolCalls{Calls: calls})
	return b
}

// ToolReturn appends a successful tool result (chainable).
func (b *ConversationBuilder) ToolReturn(toolName, callID, content string) *ConversationBuilder {
	b.messages = append(b.messages, core.ToolReturn{
		ToolName: toolName,
		CallID:   callID,
		Content:  content,
	})
	return b
}

// Message appends an arbitrary message (chainable).
func (b *ConversationBuilder) Message(m core.Message) *ConversationBuilder {
	b.messages = append(b.messages, m)
	return b
}

// Build returns the accumulated log.
func (b *ConversationBuilder) Build() []core.Message { return b.messages }
