package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentloop/agentloop/core"
)

type weatherArgs struct {
	City  string `json:"city" jsonschema:"description=City name"`
	Days  int    `json:"days,omitempty" jsonschema:"minimum=1,maximum=10"`
	Units string `json:"units,omitempty"`
}

func TestFor_StructProducesObjectSchema(t *testing.T) {
	s, err := For[weatherArgs]()
	require.NoError(t, err)

	def := s.Definition()
	assert.Equal(t, "object", def["type"])
	assert.NotContains(t, def, "$schema")
	assert.NotContains(t, def, "$id")

	props, ok := def["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "days")
}

func TestCheck_ValidJSONArgs(t *testing.T) {
	s := MustFor[weatherArgs]()

	value, fieldErrs, err := s.Check(core.JSONArgs(json.RawMessage(`{"city":"Berlin","days":3}`)))
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)

	args, err := Decode[weatherArgs](value)
	require.NoError(t, err)
	assert.Equal(t, weatherArgs{City: "Berlin", Days: 3}, args)
}

func TestCheck_StructuredArgsValidateLikeJSON(t *testing.T) {
	s := MustFor[weatherArgs]()

	fromJSON, jsonErrs, err := s.Check(core.JSONArgs(json.RawMessage(`{"city":"Berlin"}`)))
	require.NoError(t, err)
	fromStructured, structErrs, err2 := s.Check(core.StructuredArgs(map[string]any{"city": "Berlin"}))
	require.NoError(t, err2)

	assert.Empty(t, jsonErrs)
	assert.Empty(t, structErrs)
	assert.Equal(t, fromJSON, fromStructured)
}

func TestCheck_WrongTypeYieldsFieldError(t *testing.T) {
	s := MustFor[weatherArgs]()

	_, fieldErrs, err := s.Check(core.JSONArgs(json.RawMessage(`{"city":123}`)))
	require.NoError(t, err)
	require.NotEmpty(t, fieldErrs)
	assert.Equal(t, "/city", fieldErrs[0].Path)
}

func TestCheck_MissingRequiredYieldsFieldError(t *testing.T) {
	s := MustFor[weatherArgs]()

	_, fieldErrs, err := s.Check(core.JSONArgs(json.RawMessage(`{}`)))
	require.NoError(t, err)
	assert.NotEmpty(t, fieldErrs)
}

func TestCheck_UnknownPropertyRejected(t *testing.T) {
	s := MustFor[weatherArgs]()

	_, fieldErrs, err := s.Check(core.JSONArgs(json.RawMessage(`{"city":"Berlin","zip":"10115"}`)))
	require.NoError(t, err)
	assert.NotEmpty(t, fieldErrs)
}

func TestCheck_RangeConstraint(t *testing.T) {
	s := MustFor[weatherArgs]()

	_, fieldErrs, err := s.Check(core.JSONArgs(json.RawMessage(`{"city":"Berlin","days":99}`)))
	require.NoError(t, err)
	require.NotEmpty(t, fieldErrs)
	assert.Equal(t, "/days", fieldErrs[0].Path)
}

func TestCheck_MalformedJSONIsRecoverable(t *testing.T) {
	s := MustFor[weatherArgs]()

	_, fieldErrs, err := s.Check(core.JSONArgs(json.RawMessage(`{"city":`)))
	require.NoError(t, err, "parse failures are retry feedback, not internal errors")
	require.NotEmpty(t, fieldErrs)
	assert.Contains(t, fieldErrs[0].Message, "invalid JSON")
}

func TestDecode_BindsValue(t *testing.T) {
	args, err := Decode[weatherArgs](map[string]any{"city": "Oslo", "units": "metric"})
	require.NoError(t, err)
	assert.Equal(t, weatherArgs{City: "Oslo", Units: "metric"}, args)
}
