package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/agentloop/agentloop/core"
)

// Turn configures one scripted model response.
type Turn struct {
	Message core.ModelMessage
	Usage   core.Usage
	Err     error
}

// TextTurn is a convenience constructor for a free-text turn.
func TextTurn(content string) Turn {
	return Turn{Message: core.ModelTextResponse{Content: content}}
}

// ToolCallTurn is a convenience constructor for a tool-calls turn. Calls
// without a CallID get a generated one.
func ToolCallTurn(calls ...core.ToolCall) Turn {
	for i := range calls {
		if calls[i].CallID == "" {
			calls[i].CallID = uuid.NewString()
		}
	}
	return Turn{Message: core.ModelToolCalls{Calls: calls}}
}

// ScriptedModel is a deterministic Model replaying a fixed sequence of turns.
// It records every request it receives for assertions. Safe for concurrent
// use, though a scripted conversation is inherently sequential.
type ScriptedModel struct {
	mu       sync.Mutex
	index    int
	turns    []Turn
	requests []Request
}

// NewScriptedModel builds a model replaying the given turns in order.
func NewScriptedModel(turns ...Turn) *ScriptedModel {
	cloned := make([]Turn, len(turns))
	copy(cloned, turns)
	return &ScriptedModel{turns: cloned}
}

// Request implements Model; it returns the next scripted turn or fails once
// the script is exhausted.
func (m *ScriptedModel) Request(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.index >= len(m.turns) {
		return nil, fmt.Errorf("script exhausted at turn %d", m.index+1)
	}
	turn := m.turns[m.index]
	m.index++

	if turn.Err != nil {
		return nil, turn.Err
	}
	usage := turn.Usage
	usage.Requests++
	return &Response{Message: turn.Message, Usage: usage}, nil
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: "scripted", Provider: "test", SupportsTools: true}
}

// Requests returns the requests received so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}
