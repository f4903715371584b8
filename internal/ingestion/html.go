package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelectors are elements that end a visual line.
const blockSelectors = "p, li, h1, h2, h3, h4, h5, h6, div, section, article, header, tr, dt, dd, blockquote"

// LinesFromHTML extracts the visible text of an HTML résumé, one line per
// block element or <br>.
func LinesFromHTML(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Message: "failed to parse HTML", Cause: err}
	}

	doc.Find("script, style, noscript, template, svg").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("- ")
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})
	// Table cells of one row read as "a | b"
	doc.Find("td, th").Each(func(i int, s *goquery.Selection) {
		if s.Prev().Length() > 0 {
			s.PrependHtml(" | ")
		}
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return Lines(root.Text()), nil
}

// Error represents an ingestion failure
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	prefix := "ingestion error"
	if e.Path != "" {
		prefix = fmt.Sprintf("ingestion error for %s", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
