package ports

import (
	"context"

	"goldrun/internal/domain/execution"
)

// OutcomePublisher ships case outcomes and the final summary to an external
// system.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, runID string, outcome execution.CaseOutcome) error
	PublishSummary(ctx context.Context, runID string, summary execution.RunSummary) error
	Close() error
}
