package dates

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-sifter/internal/parsing"
)

// ocrDigits maps characters of the original line commonly misread for
// digits. Keys are case-sensitive: "S" is a five, "s" is a letter.
var ocrDigits = map[byte]byte{
	'O': '0', 'o': '0',
	'l': '1', 'I': '1', '|': '1',
	'S': '5',
	'B': '8',
	'Z': '2',
}

// prepared is a matching-friendly copy of a line: lowercase, accent-folded,
// ASCII dashes, apostrophes as spaces. offsets[i] is the byte offset in the
// original line of the rune that produced prepared byte i.
type prepared struct {
	original string
	text     string
	offsets  []int
	ocr      []bool
}

func prepare(line string, ocrTolerance bool) prepared {
	var sb strings.Builder
	sb.Grow(len(line))
	offsets := make([]int, 0, len(line)+1)

	for i, r := range line {
		piece := foldRune(r)
		for j := 0; j < len(piece); j++ {
			offsets = append(offsets, i)
		}
		sb.WriteString(piece)
	}
	offsets = append(offsets, len(line))

	p := prepared{original: line, text: sb.String(), offsets: offsets}
	p.ocr = make([]bool, len(p.text))
	if ocrTolerance {
		p.applyOCR()
	}
	return p
}

func foldRune(r rune) string {
	switch r {
	case '\'', '’', '‘', '`', '´':
		return " "
	case ' ', '\t':
		return " "
	}
	if r < utf8.RuneSelf {
		return string(unicode.ToLower(r))
	}
	s := parsing.NormalizeDashes(string(r))
	if s != string(r) {
		return s
	}
	return strings.ToLower(parsing.FoldAccents(s))
}

// applyOCR rewrites look-alike characters inside digit-dominated tokens such
// as "2O19" or "O9/2O22". Tokens holding any other letter are left alone.
func (p *prepared) applyOCR() {
	b := []byte(p.text)
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		digits, lookalikes, others := 0, 0, 0
		for k := start; k < end; k++ {
			switch c := b[k]; {
			case c >= '0' && c <= '9':
				digits++
			case c == '/' || c == '.' || c == '-':
			case p.lookalike(k) != 0:
				lookalikes++
			default:
				others++
			}
		}
		if others == 0 && lookalikes > 0 && digits > lookalikes {
			for k := start; k < end; k++ {
				if d := p.lookalike(k); d != 0 {
					b[k] = d
					p.ocr[k] = true
				}
			}
		}
		start = -1
	}

	for k := 0; k < len(b); k++ {
		c := b[k]
		if c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c == '/' || c == '.' || c == '-' || c == '|' {
			if start < 0 {
				start = k
			}
			continue
		}
		flush(k)
	}
	flush(len(b))
	p.text = string(b)
}

// lookalike returns the digit the original character at prepared byte k
// stands for, or zero.
func (p *prepared) lookalike(k int) byte {
	off := p.offsets[k]
	if off >= len(p.original) {
		return 0
	}
	// Only single-byte originals map one to one onto prepared bytes.
	if k > 0 && p.offsets[k-1] == off {
		return 0
	}
	if k+1 < len(p.offsets) && p.offsets[k+1] == off {
		return 0
	}
	return ocrDigits[p.original[off]]
}

// span maps a prepared byte range back to the original text.
func (p prepared) span(start, end int) string {
	if start < 0 || end > len(p.text) || start >= end {
		return ""
	}
	return strings.TrimSpace(p.original[p.offsets[start]:p.offsets[end]])
}

// ocrTouched reports whether any byte in [start,end) was OCR-corrected.
func (p prepared) ocrTouched(start, end int) bool {
	for k := start; k < end && k < len(p.ocr); k++ {
		if p.ocr[k] {
			return true
		}
	}
	return false
}
