package schema

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/sumstring/wireformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_SumRequest(t *testing.T) {
	raw, err := GenerateSchema(wireformat.SumRequestWire{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "object", decoded["type"])

	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok, "expected inline properties")
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")

	a := props["a"].(map[string]any)
	assert.Equal(t, "integer", a["type"])

	assert.ElementsMatch(t, []any{"a", "b"}, decoded["required"])
}

func TestGenerateSchema_NestedStruct(t *testing.T) {
	type Inner struct {
		Name string `json:"name"`
	}
	type Outer struct {
		Inner Inner `json:"inner"`
		Count int   `json:"count"`
	}

	raw, err := GenerateSchema(Outer{})
	require.NoError(t, err)

	assert.Contains(t, string(raw), "inner")
	assert.Contains(t, string(raw), "name")
	assert.Contains(t, string(raw), "count")
}
