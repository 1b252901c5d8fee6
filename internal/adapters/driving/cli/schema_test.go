package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCmd_SkipsServices(t *testing.T) {
	assert.True(t, hasAnnotation(schemaCmd, skipServices))
}

func TestResultSchema(t *testing.T) {
	data, err := resultSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "OCRResult", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"name", "tuRegd", "result", "grade", "needsReview"} {
		assert.Contains(t, props, field)
	}

	result, ok := props["result"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"Passed", "Failed"}, result["enum"])
	assert.ElementsMatch(t, []any{"name", "tuRegd", "result"}, schema["required"])
}

func TestSchemaCmd_Result(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"tuRegd"`)
}

func TestSchemaCmd_Pack(t *testing.T) {
	defer resetFlags(rootCmd)

	out, err := execute(t, "schema", "--pack")
	require.NoError(t, err)
	assert.Contains(t, out, "markscan pattern pack")
	assert.NotContains(t, out, "tuRegd")
}
