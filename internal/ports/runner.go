package ports

import (
	"context"

	"goldrun/internal/domain/execution"
)

// ProcessRunner runs the interpreter under test on one example and captures
// its standard output.
//
// Run blocks until the child exits. An error wrapping execution.ErrLaunch or
// execution.ErrInput aborts the run; the child's exit code and stderr are
// reported in the output and never cause an error.
type ProcessRunner interface {
	Run(ctx context.Context, tc execution.TestCase) (*execution.CapturedOutput, error)
	Close() error
}
