package executor

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"

	"goldrun/internal/compare"
	"goldrun/internal/domain/execution"
	"goldrun/internal/ports"
)

// caseRunner turns a single TestCase into a CaseOutcome.
type caseRunner struct {
	runner ports.ProcessRunner
	log    log.Logger
}

func newCaseRunner(runner ports.ProcessRunner, logger log.Logger) *caseRunner {
	return &caseRunner{runner: runner, log: logger}
}

// Run reads the golden file first so a case without one never reaches the
// interpreter.
func (r *caseRunner) Run(ctx context.Context, tc execution.TestCase) execution.CaseOutcome {
	expected, err := os.ReadFile(tc.ExpectedOutputPath)
	if err != nil {
		return execution.Skipped(tc, fmt.Errorf("couldn't read example output file at %s: %w", tc.ExpectedOutputPath, err))
	}

	output, err := r.runner.Run(ctx, tc)
	if err != nil {
		return execution.Fatal(tc, err)
	}

	result := compare.Diff(compare.Normalize(string(expected)), compare.Normalize(output.Text))
	r.log.Debug("Compared output", "case", tc.Name, "verdict", result.Verdict, "status", output.Status, "exit", output.ExitCode, "elapsed", output.Duration)

	return execution.Ok(tc, string(expected), output, result)
}
