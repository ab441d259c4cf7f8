package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phptoro/bridge-sdk/wireformat"
)

func TestGenerateSchema_InvokeEnvelope(t *testing.T) {
	data, err := GenerateSchema(wireformat.InvokeRequestWire{})
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &schema))

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok, "schema must expand properties inline")
	assert.Contains(t, props, "command")
	assert.Contains(t, props, "params")

	required, _ := schema["required"].([]interface{})
	assert.Contains(t, required, "command")
}
