package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "json code block", input: "```json\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "generic code block", input: "```\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "code block with language", input: "```javascript\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "plain JSON", input: `{"key": "value"}`, expected: `{"key": "value"}`},
		{name: "preamble before object", input: "Here are the entities:\n{\"entities\": []}", expected: `{"entities": []}`},
		{name: "preamble before array", input: "Items:\n[\"a\", \"b\"]", expected: `["a", "b"]`},
		{name: "trailing text", input: "{\"key\": \"value\"}\n\nAnything else?", expected: `{"key": "value"}`},
		{name: "escaped quotes", input: `Result: {"message": "He said \"hi\" {x}"}`, expected: `{"message": "He said \"hi\" {x}"}`},
		{name: "not json", input: "no entities found", expected: "no entities found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		object string
		array  string
	}{
		{name: "nested object", input: `{"a": {"b": [1, 2]}} tail`, object: `{"a": {"b": [1, 2]}}`},
		{name: "braces in string", input: `{"t": "Hello {name}!"}`, object: `{"t": "Hello {name}!"}`},
		{name: "array of objects", input: `[{"id": 1}, {"id": 2}] extra`, array: `[{"id": 1}, {"id": 2}]`},
		{name: "unterminated", input: `{"a": 1`},
		{name: "empty", input: ""},
		{name: "not json", input: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.object, extractJSONObject(tt.input))
			assert.Equal(t, tt.array, extractJSONArray(tt.input))
		})
	}
}
