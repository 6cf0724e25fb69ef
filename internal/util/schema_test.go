package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Command string  `json:"command" description:"Shell command to run"`
	Count   int     `json:"count,omitempty"`
	Verbose bool    `json:"verbose,omitempty"`
	Ratio   float64 `json:"ratio,omitempty"`
	hidden  string  //nolint:unused
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, props, "command")
	require.Contains(t, props, "count")
	assert.NotContains(t, props, "hidden")

	command := props["command"].(map[string]any)
	assert.Equal(t, "string", command["type"])
	assert.Equal(t, "Shell command to run", command["description"])
	assert.Equal(t, "integer", props["count"].(map[string]any)["type"])
	assert.Equal(t, "boolean", props["verbose"].(map[string]any)["type"])
	assert.Equal(t, "number", props["ratio"].(map[string]any)["type"])

	// Only the non-omitempty field is required.
	assert.Equal(t, []string{"command"}, schema["required"])
}

func TestCreateSchemaNonStruct(t *testing.T) {
	schema := CreateSchema("not a struct")
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}

func TestValidateParameters(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	err := ValidateParameters(map[string]any{"command": "ls"}, schema)
	assert.NoError(t, err)

	err = ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "command", ve.Field)

	err = ValidateParameters(map[string]any{"command": 42}, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected type string")

	// JSON decoding produces float64 for numbers; whole floats pass as integers.
	err = ValidateParameters(map[string]any{"command": "ls", "count": float64(3)}, schema)
	assert.NoError(t, err)
	err = ValidateParameters(map[string]any{"command": "ls", "count": 3.5}, schema)
	assert.Error(t, err)

	// Extra fields are tolerated.
	err = ValidateParameters(map[string]any{"command": "ls", "extra": true}, schema)
	assert.NoError(t, err)
}
