package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var querySchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"query": map[string]interface{}{"type": "string", "minLength": 1},
		"k":     map[string]interface{}{"type": "integer", "minimum": 1},
	},
	"required":             []interface{}{"query"},
	"additionalProperties": false,
}

func TestSchema_Validate(t *testing.T) {
	schema := MustCompile(querySchema)

	tests := []struct {
		name      string
		doc       interface{}
		wantValid bool
		wantField string
	}{
		{"valid", map[string]interface{}{"query": "matcha in Brooklyn", "k": 8}, true, ""},
		{"missing required", map[string]interface{}{"k": 3}, false, "(root)"},
		{"wrong type", map[string]interface{}{"query": "x", "k": "eight"}, false, "k"},
		{"extra key", map[string]interface{}{"query": "x", "mood": "cozy"}, false, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantField, result.Errors[0].Field)
				assert.NotEmpty(t, result.Summary())
			}
		})
	}
}

func TestSchema_ValidateJSON(t *testing.T) {
	schema := MustCompile(querySchema)

	result, err := schema.ValidateJSON(`{"query":"vinyl bars"}`)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	_, err = schema.ValidateJSON(`{not json`)
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{"type": 42})
	assert.Error(t, err)
}
