package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromMediaType(t *testing.T) {
	tests := []struct {
		mediaType string
		want      Format
		ok        bool
	}{
		{"application/json", FormatJSON, true},
		{"text/plain", FormatText, true},
		{"text/markdown", FormatText, true},
		{"text/html", FormatHTML, true},
		{"application/pdf", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			got, ok := FormatFromMediaType(tt.mediaType)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFetchDocument(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cv", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><h2>Formation</h2><p>Master informatique — Université Lyon — 2016 - 2018</p></body></html>`))
	})
	mux.HandleFunc("/cv.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("Formation\nMaster informatique — Université Lyon — 2016 - 2018\n"))
	})
	mux.HandleFunc("/cv.pdf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := newTestSlicer()

	for _, path := range []string{"/cv", "/cv.txt"} {
		t.Run(path, func(t *testing.T) {
			doc, meta, err := s.FetchDocument(context.Background(), server.URL+path, nil)
			require.NoError(t, err)
			assert.Equal(t, server.URL+path, meta.Source)
			assert.True(t, meta.Sliced)
			require.Len(t, doc.Candidates, 1)
			assert.Equal(t, "Master informatique", doc.Candidates[0].Title)
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, _, err := s.FetchDocument(context.Background(), server.URL+"/cv.pdf", nil)
		var ie *Error
		require.ErrorAs(t, err, &ie)
		assert.Contains(t, err.Error(), "unsupported content type")
	})

	t.Run("not found", func(t *testing.T) {
		_, _, err := s.FetchDocument(context.Background(), server.URL+"/missing", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch document")
	})
}
