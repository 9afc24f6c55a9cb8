// Package executor drives a run: it pulls cases from a producer, runs and
// compares each one, and keeps the run summary.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"

	"goldrun/internal/domain/execution"
	"goldrun/internal/ports"
)

// Config wires the collaborators of a run. Producer and Runner are required.
type Config struct {
	Producer  ports.CaseProducer
	Runner    ports.ProcessRunner
	Reporters []ports.Reporter
	Publisher ports.OutcomePublisher

	// ExamplesDir is only used for the run header.
	ExamplesDir string
	// AbortOnMissing turns an unreadable golden file into a fatal error
	// instead of a skipped case.
	AbortOnMissing bool
	// RunID identifies the run to the publisher.
	RunID string

	Logger log.Logger
}

// Service runs cases strictly one after another.
type Service struct {
	producer       ports.CaseProducer
	cases          *caseRunner
	reporters      []ports.Reporter
	publisher      ports.OutcomePublisher
	examplesDir    string
	abortOnMissing bool
	runID          string
	log            log.Logger
}

// NewService validates cfg and constructs a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Producer == nil {
		return nil, fmt.Errorf("executor: case producer must be provided")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("executor: process runner must be provided")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Root()
	}
	logger = logger.New("component", "executor")

	return &Service{
		producer:       cfg.Producer,
		cases:          newCaseRunner(cfg.Runner, logger),
		reporters:      cfg.Reporters,
		publisher:      cfg.Publisher,
		examplesDir:    cfg.ExamplesDir,
		abortOnMissing: cfg.AbortOnMissing,
		runID:          cfg.RunID,
		log:            logger,
	}, nil
}

// Run processes every case the producer yields and returns the summary.
//
// A fatal outcome stops the run and is returned as the error together with
// the summary accumulated so far. If ctx is cancelled the context error is
// returned and no summary is reported.
func (s *Service) Run(ctx context.Context) (execution.RunSummary, error) {
	var summary execution.RunSummary

	for _, r := range s.reporters {
		r.RunStarted(s.examplesDir)
	}

	for {
		tc, err := s.producer.NextCase(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			return summary, fmt.Errorf("next case: %w", err)
		}

		for _, r := range s.reporters {
			r.CaseStarted(tc)
		}

		outcome := s.cases.Run(ctx, tc)
		if outcome.Kind == execution.OutcomeFatal && ctx.Err() != nil {
			return summary, ctx.Err()
		}

		switch outcome.Kind {
		case execution.OutcomeOK:
			summary.Record(outcome.Passed())
		case execution.OutcomeSkipped:
			if s.abortOnMissing {
				outcome = execution.Fatal(tc, &execution.SetupError{
					Case: tc.Name,
					Err:  fmt.Errorf("%w: %w", execution.ErrGolden, outcome.Err),
				})
				break
			}
			s.log.Warn("Skipping case without golden file", "case", tc.Name, "err", outcome.Err)
			summary.Skip()
		}

		for _, r := range s.reporters {
			r.CaseFinished(outcome)
		}
		s.publishOutcome(ctx, outcome)

		if outcome.Kind == execution.OutcomeFatal {
			return summary, outcome.Err
		}
	}

	for _, r := range s.reporters {
		r.RunFinished(summary)
	}
	s.publishSummary(ctx, summary)

	return summary, nil
}

func (s *Service) publishOutcome(ctx context.Context, outcome execution.CaseOutcome) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOutcome(ctx, s.runID, outcome); err != nil {
		s.log.Warn("Failed to publish case outcome", "case", outcome.Case.Name, "err", err)
	}
}

func (s *Service) publishSummary(ctx context.Context, summary execution.RunSummary) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSummary(ctx, s.runID, summary); err != nil {
		s.log.Warn("Failed to publish run summary", "err", err)
	}
}
