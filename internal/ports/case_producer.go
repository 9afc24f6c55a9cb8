package ports

import (
	"context"

	"goldrun/internal/domain/execution"
)

// CaseProducer yields test cases one at a time and returns io.EOF once every
// case has been handed out.
type CaseProducer interface {
	NextCase(ctx context.Context) (execution.TestCase, error)
}
