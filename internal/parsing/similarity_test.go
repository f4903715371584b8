package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenOverlap(t *testing.T) {
	assert.Equal(t, 1.0, TokenOverlap("ACME Corp", "acme corp"))
	assert.Equal(t, 0.5, TokenOverlap("Google", "Google France"))
	assert.Equal(t, 0.0, TokenOverlap("Engineer", "ACME"))
	assert.Equal(t, 0.0, TokenOverlap("", "ACME"))
}

func TestLexicalDiversity(t *testing.T) {
	assert.Equal(t, 1.0, LexicalDiversity(""))
	assert.Equal(t, 1.0, LexicalDiversity("built a data pipeline"))
	assert.InDelta(t, 0.2, LexicalDiversity("test test test test test"), 1e-9)
}

func TestHasRepeatedCharacters(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"-----", true},
		{"xxxx", true},
		{"aaaaab", true},
		{"Ingénieur", false},
		{"2000000", false},
		{"Cool", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, HasRepeatedCharacters(tt.input))
		})
	}
}

func TestLetterRatio(t *testing.T) {
	assert.Equal(t, 0.0, LetterRatio("30/01/17"))
	assert.Equal(t, 1.0, LetterRatio("Engineer"))
	assert.Equal(t, 0.0, LetterRatio(""))
}
