package executor

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"goldrun/internal/domain/execution"
)

type sliceProducer struct {
	mu    sync.Mutex
	cases []execution.TestCase
	next  int
	err   error
}

func (p *sliceProducer) NextCase(ctx context.Context) (execution.TestCase, error) {
	if err := ctx.Err(); err != nil {
		return execution.TestCase{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return execution.TestCase{}, p.err
	}
	if p.next >= len(p.cases) {
		return execution.TestCase{}, io.EOF
	}
	tc := p.cases[p.next]
	p.next++
	return tc, nil
}

type stubRunner struct {
	mu    sync.Mutex
	runFn func(ctx context.Context, tc execution.TestCase) (*execution.CapturedOutput, error)
	ran   []string
}

func (s *stubRunner) Run(ctx context.Context, tc execution.TestCase) (*execution.CapturedOutput, error) {
	s.mu.Lock()
	s.ran = append(s.ran, tc.Name)
	s.mu.Unlock()
	return s.runFn(ctx, tc)
}

func (s *stubRunner) Close() error {
	return nil
}

// outputs returns a runFn that answers each case name with fixed stdout.
func outputs(byName map[string]string) func(context.Context, execution.TestCase) (*execution.CapturedOutput, error) {
	return func(_ context.Context, tc execution.TestCase) (*execution.CapturedOutput, error) {
		return &execution.CapturedOutput{Text: byName[tc.Name], Status: execution.StatusOK}, nil
	}
}

type recordingReporter struct {
	started  []string
	outcomes []execution.CaseOutcome
	header   string
	summary  *execution.RunSummary
}

func (r *recordingReporter) RunStarted(examplesDir string) { r.header = examplesDir }

func (r *recordingReporter) CaseStarted(tc execution.TestCase) {
	r.started = append(r.started, tc.Name)
}

func (r *recordingReporter) CaseFinished(outcome execution.CaseOutcome) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingReporter) RunFinished(summary execution.RunSummary) {
	r.summary = &summary
}

type recordingPublisher struct {
	outcomes  []execution.CaseOutcome
	summaries []execution.RunSummary
	runIDs    []string
	err       error
}

func (p *recordingPublisher) PublishOutcome(_ context.Context, runID string, outcome execution.CaseOutcome) error {
	p.runIDs = append(p.runIDs, runID)
	p.outcomes = append(p.outcomes, outcome)
	return p.err
}

func (p *recordingPublisher) PublishSummary(_ context.Context, runID string, summary execution.RunSummary) error {
	p.runIDs = append(p.runIDs, runID)
	p.summaries = append(p.summaries, summary)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// goldenCase writes golden (when non-nil) and returns a TestCase pointing at
// it.
func goldenCase(t *testing.T, dir, name string, golden *string) execution.TestCase {
	t.Helper()
	out := filepath.Join(dir, name+".out")
	if golden != nil {
		if err := os.WriteFile(out, []byte(*golden), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
	}
	return execution.TestCase{
		Name:               name,
		ProgramPath:        filepath.Join(dir, name),
		ExpectedOutputPath: out,
	}
}

func str(s string) *string { return &s }
