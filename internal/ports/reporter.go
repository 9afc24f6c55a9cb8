package ports

import "goldrun/internal/domain/execution"

// Reporter presents a run as it happens.
type Reporter interface {
	RunStarted(examplesDir string)
	CaseStarted(tc execution.TestCase)
	CaseFinished(outcome execution.CaseOutcome)
	RunFinished(summary execution.RunSummary)
}
