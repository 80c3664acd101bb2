// Package schema turns Go argument structs into JSON Schema documents and
// validates model-supplied tool arguments against them. Generation uses
// invopop/jsonschema reflection (honoring json and jsonschema struct tags);
// validation uses the compiled santhosh-tekuri/jsonschema validator so both
// the raw-JSON and structured argument paths accept exactly the same values.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agentloop/agentloop/core"
)

// errorPrinter localizes validator error kinds. English only.
var errorPrinter = message.NewPrinter(language.English)

// Schema pairs the JSON Schema document describing a tool's arguments with
// its compiled validator. Build once at registration; safe for concurrent use.
type Schema struct {
	definition map[string]any
	compiled   *jsonschema.Schema
}

// For builds a Schema for the argument type A. A is normally a struct whose
// exported fields (json tags, jsonschema tags for descriptions and
// constraints) become the schema properties. Unknown properties are rejected.
func For[A any]() (*Schema, error) {
	r := &invopop.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: isStruct[A](),
	}
	reflected := r.ReflectFromType(reflect.TypeFor[A]())

	data, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}

	var definition map[string]any
	if err := json.Unmarshal(data, &definition); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	// Providers reject metadata keywords in tool definitions.
	delete(definition, "$schema")
	delete(definition, "$id")

	compiled, err := compile(definition)
	if err != nil {
		return nil, err
	}

	return &Schema{definition: definition, compiled: compiled}, nil
}

// MustFor is like For but panics on error. Intended for registration-time
// schemas built from static types.
func MustFor[A any]() *Schema {
	s, err := For[A]()
	if err != nil {
		panic(err)
	}
	return s
}

func isStruct[A any]() bool {
	t := reflect.TypeFor[A]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func compile(definition map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("arguments.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("arguments.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// Definition returns the JSON Schema document for tool definitions sent to
// the model. Callers must not mutate the returned map.
func (s *Schema) Definition() map[string]any { return s.definition }

// Check parses and validates tool call arguments. It returns the validated
// value, or a non-empty list of field errors when the payload is malformed or
// fails validation. Field errors are recoverable: the caller converts them
// into retry feedback for the model. The error return is reserved for
// internal failures (unencodable structured args).
//
// Structured arguments are normalized through a JSON round trip so that both
// argument forms validate identically.
func (s *Schema) Check(args core.ToolArgs) (any, []core.FieldError, error) {
	raw, err := args.JSON()
	if err != nil {
		return nil, nil, err
	}
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, []core.FieldError{{Message: "invalid JSON: " + err.Error()}}, nil
	}
	if err := s.compiled.Validate(value); err != nil {
		return nil, fieldErrors(err), nil
	}
	return value, nil, nil
}

// Decode binds a validated payload onto the argument type A.
func Decode[A any](value any) (A, error) {
	var out A
	data, err := json.Marshal(value)
	if err != nil {
		return out, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("bind arguments: %w", err)
	}
	return out, nil
}

// fieldErrors flattens a validator error tree into leaf field errors keyed by
// JSON pointer paths.
func fieldErrors(err error) []core.FieldError {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []core.FieldError{{Message: err.Error()}}
	}

	var out []core.FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, core.FieldError{
				Path:    "/" + strings.Join(e.InstanceLocation, "/"),
				Message: e.ErrorKind.LocalizedString(errorPrinter),
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return out
}
