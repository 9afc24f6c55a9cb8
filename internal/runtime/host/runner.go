// Package host runs the interpreter under test as a child process of the
// harness.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"goldrun/internal/domain/execution"
	"goldrun/internal/ports"
)

// waitDelay bounds how long Run waits for the child's output pipes to close
// after the child has been killed.
const waitDelay = time.Second

// Config describes how to invoke the interpreter.
type Config struct {
	// Interpreter is the resolved executable path.
	Interpreter string
	// Limits are applied to every invocation. Only TimeLimit is honored.
	Limits execution.RunLimits
}

// Runner invokes the interpreter on the host with os/exec.
type Runner struct {
	interpreter string
	limits      execution.RunLimits
	log         log.Logger
}

var _ ports.ProcessRunner = (*Runner)(nil)

// New creates a host Runner.
func New(cfg Config, logger log.Logger) (*Runner, error) {
	if cfg.Interpreter == "" {
		return nil, fmt.Errorf("host runtime: interpreter path must be provided")
	}
	if logger == nil {
		logger = log.Root()
	}
	return &Runner{
		interpreter: cfg.Interpreter,
		limits:      cfg.Limits.Normalize(),
		log:         logger.New("component", "host-runner"),
	}, nil
}

// Run executes `interpreter <program>` and returns what it wrote to stdout.
// When the case has an input file its full contents are written to the
// child's stdin; otherwise the child's stdin is the null device.
func (r *Runner) Run(ctx context.Context, tc execution.TestCase) (*execution.CapturedOutput, error) {
	stdin, err := openInput(tc)
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if r.limits.TimeLimit > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.limits.TimeLimit)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.interpreter, tc.ProgramPath)
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	r.log.Debug("Running interpreter", "case", tc.Name, "program", tc.ProgramPath, "stdin", tc.InputPath)

	start := time.Now()
	runErr := cmd.Run()
	result := &execution.CapturedOutput{
		Text:     stdout.String(),
		Stderr:   stderr.String(),
		Status:   execution.StatusOK,
		Duration: time.Since(start),
	}

	if runErr == nil {
		return result, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = int64(exitErr.ExitCode())
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			result.Status = execution.StatusTimeLimit
		}
		return result, nil
	}
	if errors.Is(runErr, exec.ErrWaitDelay) {
		return result, nil
	}

	return nil, &execution.SetupError{
		Case: tc.Name,
		Err:  fmt.Errorf("%w: %s: %w", execution.ErrLaunch, r.interpreter, runErr),
	}
}

// Close is a no-op; the host runner holds no resources between runs.
func (r *Runner) Close() error {
	return nil
}

func openInput(tc execution.TestCase) (io.Reader, error) {
	if !tc.HasInput() {
		return nil, nil
	}
	data, err := os.ReadFile(tc.InputPath)
	if err != nil {
		return nil, &execution.SetupError{
			Case: tc.Name,
			Err:  fmt.Errorf("%w: %w", execution.ErrInput, err),
		}
	}
	return bytes.NewReader(data), nil
}
