package compare

// CharVerdict classifies one rendered character of a comparison.
type CharVerdict int

const (
	// Match marks a character present and equal on both sides.
	Match CharVerdict = iota
	// Mismatch marks a position present on both sides with different
	// characters. The actual character is rendered.
	Mismatch
	// MissingInActual marks an expected character with no counterpart in the
	// actual output. The expected character is rendered.
	MissingInActual
	// ExtraInActual marks an actual character beyond the end of the expected
	// line or sequence.
	ExtraInActual
)

func (v CharVerdict) String() string {
	switch v {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case MissingInActual:
		return "missing"
	case ExtraInActual:
		return "extra"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of comparing one case.
type Verdict string

const (
	Pass Verdict = "pass"
	Fail Verdict = "fail"
)

// RenderedChar is a single character together with its classification.
type RenderedChar struct {
	Rune    rune
	Verdict CharVerdict
}

// RenderedLine is one compared line. Differs reports whether any character on
// the line is not a Match.
type RenderedLine struct {
	Chars   []RenderedChar
	Differs bool
}

// ComparisonResult holds the verdict for a case and the rendering used to
// explain a failure.
type ComparisonResult struct {
	Verdict   Verdict
	Rendering []RenderedLine
}

// Passed reports whether the comparison found no differences.
func (r ComparisonResult) Passed() bool {
	return r.Verdict == Pass
}

// Diff walks expected and actual in lock-step, one line from each side per
// step, and stops as soon as both current lines are absent or empty. Lines are
// never realigned, so a dropped or inserted line shows up as differences on
// every line that follows it.
func Diff(expected, actual LineSequence) ComparisonResult {
	result := ComparisonResult{Verdict: Pass}

	for i := 0; ; i++ {
		e, hasE := lineAt(expected, i)
		a, hasA := lineAt(actual, i)

		if e == "" && a == "" {
			break
		}

		if !hasA {
			result.Verdict = Fail
			result.Rendering = append(result.Rendering, remainder(expected[i:], MissingInActual)...)
			break
		}
		if !hasE {
			result.Verdict = Fail
			result.Rendering = append(result.Rendering, remainder(actual[i:], ExtraInActual)...)
			break
		}

		line := compareLine(e, a)
		if line.Differs {
			result.Verdict = Fail
		}
		result.Rendering = append(result.Rendering, line)
	}

	return result
}

func lineAt(lines LineSequence, i int) (string, bool) {
	if i < len(lines) {
		return lines[i], true
	}
	return "", false
}

func compareLine(expected, actual string) RenderedLine {
	e := []rune(expected)
	a := []rune(actual)

	n := max(len(e), len(a))
	line := RenderedLine{Chars: make([]RenderedChar, 0, n)}
	for i := 0; i < n; i++ {
		var ch RenderedChar
		switch {
		case i < len(e) && i < len(a):
			ch = RenderedChar{Rune: a[i], Verdict: Match}
			if e[i] != a[i] {
				ch.Verdict = Mismatch
			}
		case i < len(e):
			ch = RenderedChar{Rune: e[i], Verdict: MissingInActual}
		default:
			ch = RenderedChar{Rune: a[i], Verdict: ExtraInActual}
		}
		if ch.Verdict != Match {
			line.Differs = true
		}
		line.Chars = append(line.Chars, ch)
	}
	return line
}

// remainder classifies every character of the leftover lines of the longer
// side with the same verdict.
func remainder(lines LineSequence, verdict CharVerdict) []RenderedLine {
	out := make([]RenderedLine, 0, len(lines))
	for _, text := range lines {
		runes := []rune(text)
		line := RenderedLine{Chars: make([]RenderedChar, len(runes)), Differs: true}
		for i, r := range runes {
			line.Chars[i] = RenderedChar{Rune: r, Verdict: verdict}
		}
		out = append(out, line)
	}
	return out
}
