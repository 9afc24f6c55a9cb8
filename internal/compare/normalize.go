// Package compare turns captured and recorded transcripts into trimmed line
// sequences and diffs them in lock-step, one character at a time.
package compare

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LineSequence is an ordered list of trimmed lines in file order.
type LineSequence []string

// Normalize splits text into lines and trims surrounding whitespace from each
// one. A terminator at the very end of text does not start a new line, so
// "3\n" and "3" both normalize to ["3"].
func Normalize(text string) LineSequence {
	raw := splitLines(text)
	lines := make(LineSequence, len(raw))
	for i, line := range raw {
		lines[i] = strings.TrimFunc(line, isSpace)
	}
	return lines
}

// splitLines breaks text on every line boundary, treating "\r\n" as a single
// boundary.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBoundary(r) {
			i += size
			continue
		}

		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// isSpace reports the whitespace stripped from each line: unicode.IsSpace
// plus the information separators \x1c-\x1f.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}
