package ingestion

import (
	"context"
	"net/url"

	"github.com/jonathan/resume-sifter/internal/fetch"
	"github.com/jonathan/resume-sifter/internal/types"
)

// FormatFromMediaType picks the input format from a MIME media type
// (without parameters).
func FormatFromMediaType(mediaType string) (Format, bool) {
	switch mediaType {
	case "application/json":
		return FormatJSON, true
	case "text/plain", "text/markdown":
		return FormatText, true
	case "text/html", "application/xhtml+xml":
		return FormatHTML, true
	}
	return "", false
}

// FetchDocument downloads a résumé and parses it like LoadDocument. The
// format comes from the response Content-Type, then from the URL path.
func (s *Slicer) FetchDocument(ctx context.Context, rawURL string, opts *fetch.Options) (*types.Document, *Metadata, error) {
	res, err := fetch.URL(ctx, rawURL, opts)
	if err != nil {
		return nil, nil, &Error{Path: rawURL, Message: "failed to fetch document", Cause: err}
	}

	format, ok := FormatFromMediaType(res.MediaType())
	if !ok {
		if u, err := url.Parse(rawURL); err == nil {
			format, ok = FormatFromPath(u.Path)
		}
	}
	if !ok {
		return nil, nil, &Error{Path: rawURL, Message: "unsupported content type " + res.ContentType}
	}

	doc, meta, err := s.ParseDocument(res.Body, format)
	if err != nil {
		return nil, nil, err
	}
	meta.Source = rawURL
	return doc, meta, nil
}
