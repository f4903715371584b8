// Package ingestion turns résumé files (JSON documents, plain text or HTML)
// into the line-indexed Document the pipeline consumes.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	reSpaces      = regexp.MustCompile(`[ \t\x{00A0}]+`)
	reBlankLines  = regexp.MustCompile(`\n\n\n+`)
	bulletMarkers = []string{"- ", "* ", "• ", "· ", "▪ ", "► ", "– "}
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = reBlankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses inner whitespace. Bullets keep their marker.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	return reSpaces.ReplaceAllString(line, " ")
}

// Lines returns the non-blank cleaned lines of content. Bullet markers are
// kept so the slicer can tell descriptions from entry headings. The returned
// slice is what candidate line indices refer to.
func Lines(content string) []string {
	out := []string{}
	for _, line := range strings.Split(CleanText(content), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// stripBullet removes a leading list marker and reports whether there was one.
func stripBullet(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, m := range bulletMarkers {
		if strings.HasPrefix(trimmed, m) {
			return strings.TrimSpace(trimmed[len(m):]), true
		}
	}
	return strings.TrimSpace(line), false
}
