package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-sifter/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"cv.json", FormatJSON, true},
		{"CV.TXT", FormatText, true},
		{"notes.md", FormatText, true},
		{"cv.html", FormatHTML, true},
		{"cv.htm", FormatHTML, true},
		{"cv.pdf", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFromPath(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestLoadDocument_JSON(t *testing.T) {
	s := newTestSlicer()
	path := writeFile(t, "cv.json", `{
		"id": "cv-7",
		"lines": ["Développeur — Capgemini", "2019 - 2021"],
		"candidates": [{"title": "Développeur", "organization": "Capgemini", "line_index": 0, "section": "experience", "is_current": false}]
	}`)

	doc, meta, err := s.LoadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, "cv-7", doc.ID)
	require.Len(t, doc.Candidates, 1)
	assert.Equal(t, types.ContentExperience, doc.Candidates[0].Section)
	assert.False(t, meta.Sliced)
	assert.Equal(t, path, meta.Source)
	assert.Equal(t, 2, meta.Lines)
	assert.Equal(t, 1, meta.Candidates)
}

func TestLoadDocument_JSONWithoutCandidatesIsSliced(t *testing.T) {
	s := newTestSlicer()
	path := writeFile(t, "cv.json", `{"lines": ["Formation", "Master informatique — Université Lyon — 2016 - 2018"]}`)

	doc, meta, err := s.LoadDocument(path)
	require.NoError(t, err)

	assert.True(t, meta.Sliced)
	require.Len(t, doc.Candidates, 1)
	assert.Equal(t, types.ContentEducation, doc.Candidates[0].Section)
	assert.Len(t, doc.ID, idLength)
}

func TestLoadDocument_Text(t *testing.T) {
	s := newTestSlicer()
	path := writeFile(t, "cv.txt", sampleResume)

	doc, meta, err := s.LoadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, FormatText, meta.Format)
	assert.True(t, meta.Sliced)
	assert.Len(t, doc.Candidates, 4)
	assert.Equal(t, meta.Hash[:idLength], doc.ID)
}

func TestLoadDocument_HTML(t *testing.T) {
	s := newTestSlicer()
	path := writeFile(t, "cv.html", `<body><h2>Formation</h2><p>Master informatique — Université Lyon — 2016 - 2018</p></body>`)

	doc, _, err := s.LoadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Formation", "Master informatique — Université Lyon — 2016 - 2018"}, doc.Lines)
	require.Len(t, doc.Candidates, 1)
	assert.Equal(t, 1, doc.Candidates[0].LineIndex)
}

func TestLoadDocument_Errors(t *testing.T) {
	s := newTestSlicer()

	tests := []struct {
		name    string
		path    string
		message string
	}{
		{name: "unsupported extension", path: writeFile(t, "cv.pdf", "%PDF"), message: "unsupported file extension"},
		{name: "missing file", path: filepath.Join(t.TempDir(), "missing.json"), message: "file not found"},
		{name: "bad json", path: writeFile(t, "bad.json", "{"), message: "failed to decode document JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.LoadDocument(tt.path)
			require.Error(t, err)

			var ie *Error
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.path, ie.Path)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
