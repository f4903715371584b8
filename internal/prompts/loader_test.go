package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		key      string
		contains string
		wantErr  string
	}{
		{name: "system prompt", file: "entities.json", key: "entity-hints-system", contains: "named-entity tagger"},
		{name: "rules", file: "entities.json", key: "extraction-rules", contains: "{{.Subject}}"},
		{name: "missing file", file: "nonexistent.json", key: "x", wantErr: "failed to read prompt file"},
		{name: "missing key", file: "entities.json", key: "nonexistent-key", wantErr: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := Get(tt.file, tt.key)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, prompt, tt.contains)
		})
	}
}

func TestMustGet(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGet("entities.json", "entity-hints-system"))
	})
}

func TestFormat(t *testing.T) {
	got := Format("Copy {{.Subject}} text, keep {{.Other}}", map[string]string{"Subject": "entity"})
	assert.Equal(t, "Copy entity text, keep {{.Other}}", got)

	assert.Equal(t, "plain", Format("plain", nil))
}

func TestList(t *testing.T) {
	keys, err := List("entities.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"entity-hints-system", "extraction-rules"}, keys)

	_, err = List("nonexistent.json")
	assert.Error(t, err)
}
