// Package report prints a run to the terminal as it happens.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"goldrun/internal/compare"
	"goldrun/internal/domain/execution"
	"goldrun/internal/ports"
)

var (
	colorPass = text.Colors{text.FgHiGreen}
	colorFail = text.Colors{text.FgHiRed}
	colorSkip = text.Colors{text.FgHiYellow}
)

// Console writes the per-case status lines, failure diffs and the final
// summary.
type Console struct {
	w      io.Writer
	color  bool
	scheme compare.RenderScheme
	// lineOpen is set while a case status line awaits its result.
	lineOpen bool
}

var _ ports.Reporter = (*Console)(nil)

// NewConsole returns a Console writing to w. Without color, differences are
// marked with compare.PlainScheme brackets.
func NewConsole(w io.Writer, color bool) *Console {
	var scheme compare.RenderScheme = compare.PlainScheme{}
	if color {
		scheme = compare.DefaultColorScheme()
	}
	return &Console{w: w, color: color, scheme: scheme}
}

func (c *Console) RunStarted(examplesDir string) {
	fmt.Fprintf(c.w, "Running examples from %s\n", examplesDir)
}

func (c *Console) CaseStarted(tc execution.TestCase) {
	fmt.Fprintf(c.w, "[%s]: Running", tc.Name)
	c.lineOpen = true
}

func (c *Console) CaseFinished(outcome execution.CaseOutcome) {
	c.lineOpen = false
	switch outcome.Kind {
	case execution.OutcomeOK:
		if outcome.Passed() {
			fmt.Fprintf(c.w, "... %s\n", c.paint(colorPass, "Test passed"))
			return
		}
		fmt.Fprintf(c.w, "... %s%s\n", c.paint(colorFail, "Test failed"), statusNote(outcome.Output))
		fmt.Fprintln(c.w, c.paint(colorPass, "- Expected:"))
		fmt.Fprintln(c.w, strings.TrimRight(outcome.Expected, "\n"))
		fmt.Fprintln(c.w, c.paint(colorFail, "- Got:"))
		fmt.Fprintln(c.w, compare.Render(outcome.Comparison, c.scheme))
	case execution.OutcomeSkipped:
		fmt.Fprintf(c.w, "... %s\n", c.paint(colorSkip, "Test skipped"))
		fmt.Fprintln(c.w, c.paint(colorFail, upperFirst(outcome.Err.Error())))
	case execution.OutcomeFatal:
		fmt.Fprintf(c.w, "... %s\n", c.paint(colorFail, "Aborted"))
	}
}

func (c *Console) RunFinished(summary execution.RunSummary) {
	fmt.Fprintf(c.w, "Processed %d %s\n", summary.Processed, Pluralize("test", summary.Processed))
	fmt.Fprintln(c.w, c.paint(colorPass, fmt.Sprintf("%d %s succeeded", summary.Succeeded, Pluralize("test", summary.Succeeded))))
	if summary.Failed != 0 {
		fmt.Fprintln(c.w, c.paint(colorFail, fmt.Sprintf("%d %s failed", summary.Failed, Pluralize("test", summary.Failed))))
	}
}

// Interrupt terminates a status line left open by a case that never
// finished.
func (c *Console) Interrupt() {
	if !c.lineOpen {
		return
	}
	fmt.Fprintln(c.w)
	c.lineOpen = false
}

func (c *Console) paint(colors text.Colors, s string) string {
	if !c.color {
		return s
	}
	return colors.Sprint(s)
}

// Pluralize returns word unchanged for exactly one item and with an "s"
// appended otherwise.
func Pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func statusNote(out *execution.CapturedOutput) string {
	if out == nil || out.Status == "" || out.Status == execution.StatusOK {
		return ""
	}
	return fmt.Sprintf(" (%s)", out.Status)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
