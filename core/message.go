package core

import (
	"encoding/json"
	"fmt"
)

// Role identifies the conversational origin of a Message.
type Role string

// Conversation roles. Tool results and retry prompts both use RoleTool so
// provider adapters can map them onto the wire-level tool message slot.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleTool   Role = "tool"
)

// Message is one entry in a conversation log. The set of implementations is
// closed: SystemPrompt, UserPrompt, ModelTextResponse, ModelToolCalls,
// ToolReturn, ToolRetry and PlainTextForbidden.
type Message interface {
	Role() Role
	message()
}

// ModelMessage is the subset of messages a model can produce in one turn.
// A turn is always exactly one of the two shapes: free text or tool calls.
type ModelMessage interface {
	Message
	modelMessage()
}

// SystemPrompt is an instruction message placed before the first user prompt.
type SystemPrompt struct {
	Content string `json:"content"`
}

func (SystemPrompt) Role() Role { return RoleSystem }
func (SystemPrompt) message()   {}

// UserPrompt is the caller's input starting or continuing the conversation.
type UserPrompt struct {
	Content string `json:"content"`
}

func (UserPrompt) Role() Role { return RoleUser }
func (UserPrompt) message()   {}

// ModelTextResponse is a free-text model turn.
type ModelTextResponse struct {
	Content string `json:"content"`
}

func (ModelTextResponse) Role() Role    { return RoleModel }
func (ModelTextResponse) message()      {}
func (ModelTextResponse) modelMessage() {}

// ModelToolCalls is a model turn requesting one or more tool invocations.
type ModelToolCalls struct {
	Calls []ToolCall `json:"calls"`
}

func (ModelToolCalls) Role() Role    { return RoleModel }
func (ModelToolCalls) message()      {}
func (ModelToolCalls) modelMessage() {}

// ToolCall is a single named, identified invocation request within a model turn.
type ToolCall struct {
	ToolName string   `json:"tool_name"`
	CallID   string   `json:"call_id"`
	Args     ToolArgs `json:"args"`
}

// ToolReturn carries a successful tool result back to the model. CallID
// matches the originating ToolCall.
type ToolReturn struct {
	ToolName string `json:"tool_name"`
	CallID   string `json:"call_id"`
	Content  string `json:"content"`
}

func (ToolReturn) Role() Role { return RoleTool }
func (ToolReturn) message()   {}

// ToolRetry asks the model to try a call again. Exactly one of Errors
// (structured validation failures) or Content (application-supplied retry
// text) is populated.
type ToolRetry struct {
	ToolName string       `json:"tool_name"`
	CallID   string       `json:"call_id"`
	Errors   []FieldError `json:"errors,omitempty"`
	Content  string       `json:"content,omitempty"`
}

func (ToolRetry) Role() Role { return RoleTool }
func (ToolRetry) message()   {}

// Feedback renders the retry reason as text suitable for sending back to the
// model, including the instruction to correct the call.
func (m ToolRetry) Feedback() string {
	description := m.Content
	if len(m.Errors) > 0 {
		data, err := json.MarshalIndent(m.Errors, "", "  ")
		if err != nil {
			data = []byte(`[]`)
		}
		description = fmt.Sprintf("%d validation errors: %s", len(m.Errors), data)
	}
	return description + "\n\nFix the errors and try again."
}

// PlainTextForbidden is appended when the model answered with free text but a
// structured result is mandatory.
type PlainTextForbidden struct{}

func (PlainTextForbidden) Role() Role { return RoleSystem }
func (PlainTextForbidden) message()   {}

// Feedback renders the sentinel as a corrective instruction for the model.
func (PlainTextForbidden) Feedback() string {
	return "Plain text responses are not permitted, please call one of the functions instead."
}

// FieldError is a single field-level validation failure, addressed by JSON
// pointer path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Path == "" || e.Path == "/" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}
