package execution

import "goldrun/internal/compare"

// OutcomeKind tells the aggregator what happened to a case.
type OutcomeKind string

const (
	// OutcomeOK means the case ran and was compared.
	OutcomeOK OutcomeKind = "ok"
	// OutcomeSkipped means the golden file could not be read. The case is
	// not counted.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeFatal means the run cannot continue.
	OutcomeFatal OutcomeKind = "fatal"
)

// CaseOutcome is the result of handling one TestCase. Exactly one of
// Comparison (OK) or Err (Skipped, Fatal) is meaningful.
type CaseOutcome struct {
	Kind       OutcomeKind
	Case       TestCase
	Expected   string
	Output     *CapturedOutput
	Comparison compare.ComparisonResult
	Err        error
}

// Ok wraps a finished comparison.
func Ok(tc TestCase, expected string, output *CapturedOutput, result compare.ComparisonResult) CaseOutcome {
	return CaseOutcome{
		Kind:       OutcomeOK,
		Case:       tc,
		Expected:   expected,
		Output:     output,
		Comparison: result,
	}
}

// Skipped records why a case was left out of the run.
func Skipped(tc TestCase, reason error) CaseOutcome {
	return CaseOutcome{Kind: OutcomeSkipped, Case: tc, Err: reason}
}

// Fatal records the error that stops the run.
func Fatal(tc TestCase, reason error) CaseOutcome {
	return CaseOutcome{Kind: OutcomeFatal, Case: tc, Err: reason}
}

// Passed reports whether the case ran and matched its golden file.
func (o CaseOutcome) Passed() bool {
	return o.Kind == OutcomeOK && o.Comparison.Passed()
}
