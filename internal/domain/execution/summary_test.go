package execution

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldrun/internal/compare"
)

func TestRunSummaryArithmetic(t *testing.T) {
	var summary RunSummary
	for _, passed := range []bool{true, false, true, true, false} {
		summary.Record(passed)
	}
	summary.Skip()

	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.True(t, summary.Consistent())
}

func TestRunLimitsNormalize(t *testing.T) {
	limits := RunLimits{TimeLimit: -1, MemoryLimitBytes: -5}.Normalize()
	assert.Zero(t, limits.TimeLimit)
	assert.Zero(t, limits.MemoryLimitBytes)
}

func TestSetupErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("run: %w", &SetupError{Case: "fib.lisp", Err: ErrLaunch})

	require.True(t, IsSetupError(err))
	assert.ErrorIs(t, err, ErrLaunch)
	assert.Equal(t, "run: setup [fib.lisp]: interpreter could not be launched", err.Error())
	assert.False(t, IsSetupError(errors.New("plain")))
	assert.True(t, IsSetupError(fmt.Errorf("list: %w", ErrDiscovery)))
}

func TestCaseOutcomeConstructors(t *testing.T) {
	tc := TestCase{Name: "a"}

	ok := Ok(tc, "1\n", &CapturedOutput{Text: "1\n"}, compare.ComparisonResult{Verdict: compare.Pass})
	assert.Equal(t, OutcomeOK, ok.Kind)
	assert.True(t, ok.Passed())

	failed := Ok(tc, "1\n", &CapturedOutput{Text: "2\n"}, compare.ComparisonResult{Verdict: compare.Fail})
	assert.False(t, failed.Passed())

	skipped := Skipped(tc, errors.New("missing"))
	assert.Equal(t, OutcomeSkipped, skipped.Kind)
	assert.False(t, skipped.Passed())

	fatal := Fatal(tc, ErrLaunch)
	assert.Equal(t, OutcomeFatal, fatal.Kind)
	assert.ErrorIs(t, fatal.Err, ErrLaunch)
}

func TestTestCaseHasInput(t *testing.T) {
	assert.False(t, TestCase{}.HasInput())
	assert.True(t, TestCase{InputPath: "x.in"}.HasInput())
}
