package compare

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderScheme decorates a run of characters that share a verdict.
type RenderScheme interface {
	Decorate(verdict CharVerdict, segment string) string
}

// ColorScheme renders each verdict with its own terminal colors.
type ColorScheme struct {
	Match    text.Colors
	Mismatch text.Colors
	Missing  text.Colors
	Extra    text.Colors
}

// DefaultColorScheme paints matches green and every kind of difference in a
// warmer color.
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Match:    text.Colors{text.FgGreen},
		Mismatch: text.Colors{text.FgRed},
		Missing:  text.Colors{text.FgYellow, text.Underline},
		Extra:    text.Colors{text.FgMagenta},
	}
}

func (s ColorScheme) Decorate(verdict CharVerdict, segment string) string {
	colors := s.colorsFor(verdict)
	if len(colors) == 0 {
		return segment
	}
	return colors.Sprint(segment)
}

func (s ColorScheme) colorsFor(verdict CharVerdict) text.Colors {
	switch verdict {
	case Match:
		return s.Match
	case Mismatch:
		return s.Mismatch
	case MissingInActual:
		return s.Missing
	case ExtraInActual:
		return s.Extra
	}
	return nil
}

// PlainScheme marks differences with brackets so a diff stays readable when
// colors are unavailable: [x] mismatch, {-x} missing, {+x} extra.
type PlainScheme struct{}

func (PlainScheme) Decorate(verdict CharVerdict, segment string) string {
	switch verdict {
	case Mismatch:
		return "[" + segment + "]"
	case MissingInActual:
		return "{-" + segment + "}"
	case ExtraInActual:
		return "{+" + segment + "}"
	default:
		return segment
	}
}

// Render concatenates the rendering of every compared line, separated by
// newlines. Consecutive characters with the same verdict are decorated as one
// segment.
func Render(result ComparisonResult, scheme RenderScheme) string {
	var b strings.Builder
	for i, line := range result.Rendering {
		if i > 0 {
			b.WriteByte('\n')
		}
		renderLine(&b, line, scheme)
	}
	return b.String()
}

func renderLine(b *strings.Builder, line RenderedLine, scheme RenderScheme) {
	var segment strings.Builder
	for i, ch := range line.Chars {
		segment.WriteRune(ch.Rune)
		last := i == len(line.Chars)-1
		if last || line.Chars[i+1].Verdict != ch.Verdict {
			b.WriteString(scheme.Decorate(ch.Verdict, segment.String()))
			segment.Reset()
		}
	}
}
