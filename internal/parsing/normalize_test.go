package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Accents folded", "École Centrale", "ecole centrale"},
		{"Apostrophe split", "Projet de fin d'études", "projet de fin d etudes"},
		{"Punctuation collapsed", "ACME — Paris (France)", "acme paris france"},
		{"Ligature expanded", "Cœur de métier", "coeur de metier"},
		{"Digits kept", "Bac+5 en 2019", "bac 5 en 2019"},
		{"Empty string", "", ""},
		{"Whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeDashes(t *testing.T) {
	assert.Equal(t, "09/2022 - 10/2022", NormalizeDashes("09/2022 – 10/2022"))
	assert.Equal(t, "2019-2021", NormalizeDashes("2019—2021"))
	assert.Equal(t, "a-b-c", NormalizeDashes("a‐b−c"))
}

func TestContainsTerm(t *testing.T) {
	text := Normalize("Stage chez ACME Corp")
	assert.True(t, ContainsTerm(text, "stage"))
	assert.True(t, ContainsTerm(text, "acme corp"))
	assert.False(t, ContainsTerm(text, "stag"))
	assert.False(t, ContainsTerm(text, ""))
	assert.True(t, ContainsTerm("stage", "stage"))
}

func TestIsUpperAcronym(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"ABC", true},
		{"R&D", true},
		{"IBM", true},
		{"A", false},
		{"ABCDEF", false},
		{"Acme", false},
		{"AB CD", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUpperAcronym(tt.input, 4))
		})
	}
}

func TestTokensAndWordCount(t *testing.T) {
	assert.Equal(t, []string{"developpeur", "backend", "go"}, Tokens("Développeur Backend (Go)"))
	assert.Equal(t, 3, WordCount("  one two   three "))
}
