package execution

// RunSummary counts the cases of one run. Skipped cases are tracked apart and
// never count as processed.
type RunSummary struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// Record accounts for one processed case.
func (s *RunSummary) Record(passed bool) {
	s.Processed++
	if passed {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// Skip accounts for a case that was not processed.
func (s *RunSummary) Skip() {
	s.Skipped++
}

// Consistent reports whether every processed case was either a success or a
// failure.
func (s RunSummary) Consistent() bool {
	return s.Processed == s.Succeeded+s.Failed
}
