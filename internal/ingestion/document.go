package ingestion

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-sifter/internal/types"
)

// Format is the kind of input a document was read from.
type Format string

// Supported input formats
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// idLength is how many hash characters form a derived document ID
const idLength = 12

// FormatFromPath picks the input format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".txt", ".text", ".md":
		return FormatText, true
	case ".html", ".htm":
		return FormatHTML, true
	}
	return "", false
}

// LoadDocument reads a résumé file. JSON files hold a Document; text and
// HTML files are split into lines and sliced into candidates. A JSON
// document without candidates is sliced too.
func (s *Slicer) LoadDocument(path string) (*types.Document, *Metadata, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, nil, &Error{Path: path, Message: "unsupported file extension " + filepath.Ext(path)}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, &Error{Path: path, Message: "file not found", Cause: err}
		}
		return nil, nil, &Error{Path: path, Message: "failed to read file", Cause: err}
	}

	doc, meta, err := s.ParseDocument(content, format)
	if err != nil {
		var ie *Error
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return nil, nil, err
	}
	meta.Source = path
	return doc, meta, nil
}

// ParseDocument decodes content of the given format into a Document.
func (s *Slicer) ParseDocument(content []byte, format Format) (*types.Document, *Metadata, error) {
	meta := NewMetadata(content, "", format)

	var doc types.Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(content, &doc); err != nil {
			return nil, nil, &Error{Message: "failed to decode document JSON", Cause: err}
		}
	case FormatText:
		doc.Lines = Lines(string(content))
	case FormatHTML:
		lines, err := LinesFromHTML(string(content))
		if err != nil {
			return nil, nil, err
		}
		doc.Lines = lines
	default:
		return nil, nil, &Error{Message: "unsupported format " + string(format)}
	}

	if doc.Lines == nil {
		doc.Lines = []string{}
	}
	if len(doc.Candidates) == 0 {
		doc.Candidates = s.Slice(doc.Lines)
		meta.Sliced = true
	}
	if doc.ID == "" {
		doc.ID = meta.Hash[:idLength]
	}
	meta.Lines = len(doc.Lines)
	meta.Candidates = len(doc.Candidates)
	return &doc, meta, nil
}
