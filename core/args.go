package core

import (
	"encoding/json"
	"fmt"
)

// ToolArgs holds the arguments of a ToolCall in whichever form the model
// transport delivered them: raw JSON text or an already-structured mapping.
// The zero value is an empty structured mapping.
type ToolArgs struct {
	raw    json.RawMessage
	fields map[string]any
}

// JSONArgs wraps raw JSON-encoded arguments.
func JSONArgs(raw json.RawMessage) ToolArgs {
	return ToolArgs{raw: raw}
}

// StructuredArgs wraps an already-decoded argument mapping.
func StructuredArgs(fields map[string]any) ToolArgs {
	return ToolArgs{fields: fields}
}

// IsJSON reports whether the arguments are held as raw JSON text.
func (a ToolArgs) IsJSON() bool { return a.raw != nil }

// JSON returns the arguments as JSON text, encoding the structured form if
// necessary.
func (a ToolArgs) JSON() (json.RawMessage, error) {
	if a.raw != nil {
		return a.raw, nil
	}
	if a.fields == nil {
		return json.RawMessage(`{}`), nil
	}
	data, err := json.Marshal(a.fields)
	if err != nil {
		return nil, fmt.Errorf("encode tool args: %w", err)
	}
	return data, nil
}

// Value returns the arguments as a decoded value suitable for schema
// validation. The JSON-text path parses lazily; a parse failure is returned
// so callers can surface it as retry feedback rather than a crash.
func (a ToolArgs) Value() (any, error) {
	if a.raw != nil {
		var v any
		if err := json.Unmarshal(a.raw, &v); err != nil {
			return nil, fmt.Errorf("parse tool args: %w", err)
		}
		return v, nil
	}
	if a.fields == nil {
		return map[string]any{}, nil
	}
	return a.fields, nil
}

// MarshalJSON encodes the arguments as a JSON object regardless of form.
func (a ToolArgs) MarshalJSON() ([]byte, error) {
	data, err := a.JSON()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// UnmarshalJSON stores the payload in raw form.
func (a *ToolArgs) UnmarshalJSON(data []byte) error {
	a.raw = append(json.RawMessage(nil), data...)
	a.fields = nil
	return nil
}
