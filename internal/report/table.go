package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"goldrun/internal/domain/execution"
	"goldrun/internal/ports"
)

type tableRow struct {
	name     string
	verdict  string
	status   string
	duration time.Duration
	note     string
}

// Table collects one row per case and renders them after the run.
type Table struct {
	w     io.Writer
	color bool
	rows  []tableRow
	total time.Duration
}

var _ ports.Reporter = (*Table)(nil)

func NewTable(w io.Writer, color bool) *Table {
	return &Table{w: w, color: color}
}

func (t *Table) RunStarted(string) {}

func (t *Table) CaseStarted(execution.TestCase) {}

func (t *Table) CaseFinished(outcome execution.CaseOutcome) {
	row := tableRow{name: outcome.Case.Name}
	switch outcome.Kind {
	case execution.OutcomeOK:
		row.verdict = string(outcome.Comparison.Verdict)
		if outcome.Output != nil {
			row.status = string(outcome.Output.Status)
			row.duration = outcome.Output.Duration
		}
	case execution.OutcomeSkipped:
		row.verdict = "skip"
		row.note = outcome.Err.Error()
	case execution.OutcomeFatal:
		row.verdict = "fatal"
		row.note = outcome.Err.Error()
	}
	t.total += row.duration
	t.rows = append(t.rows, row)
}

func (t *Table) RunFinished(summary execution.RunSummary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(t.w)
	tw.SetTitle(fmt.Sprintf("Golden Output Results (%s)", formatDuration(t.total)))
	tw.AppendHeader(table.Row{"Case", "Verdict", "Status", "Duration", "Note"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Case", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Note", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, row := range t.rows {
		tw.AppendRow(table.Row{row.name, row.verdict, row.status, formatDuration(row.duration), row.note})
	}

	tw.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d/%d passed", summary.Succeeded, summary.Processed),
		fmt.Sprintf("%d skipped", summary.Skipped),
		formatDuration(t.total),
		"",
	})

	switch {
	case !t.color:
		tw.SetStyle(table.StyleLight)
	case summary.Failed > 0:
		tw.SetStyle(table.StyleColoredBlackOnRedWhite)
	case summary.Skipped > 0:
		tw.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		tw.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	tw.Render()
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
