package llm

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/jonathan/resume-sifter/internal/prompts"
)

// promptFile holds the extraction prompts
const promptFile = "entities.json"

// ExtractionSchema defines the JSON shape an extraction prompt asks for.
type ExtractionSchema struct {
	Name        string        // Schema name
	Description string        // System prompt preamble describing the task
	Fields      []SchemaField // Expected output fields
	Subject     string        // What the model copies from the input, e.g. "entity"
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]object"
	Description string // Description for the LLM
	Required    bool
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		fmt.Fprintf(&sb, "  %q: %s%s", field.Name, typeHint, requiredHint)
		if field.Description != "" {
			fmt.Fprintf(&sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString(prompts.Format(prompts.MustGet(promptFile, "extraction-rules"), map[string]string{"Subject": cmp.Or(schema.Subject, "field")}))
	sb.WriteString("\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// EntityHintsSchema returns the extraction schema for résumé entity hints.
func EntityHintsSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "EntityHints",
		Description: prompts.MustGet(promptFile, "entity-hints-system"),
		Subject:     "entity",
		Fields: []SchemaField{
			{
				Name:        "entities",
				Type:        `[]{"text": string, "label": "ORG"|"SCHOOL"|"DATE"|"TITLE", "line_idx": int, "confidence": number}`,
				Description: "One item per entity; confidence between 0 and 1",
				Required:    true,
			},
		},
	}
}

// numberLines prefixes each line with its index.
func numberLines(lines []string) string {
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "[%d] %s\n", i, line)
	}
	return strings.TrimRight(sb.String(), "\n")
}
