package execution

// TestCase pairs one example program with its golden transcript and an
// optional stdin seed.
type TestCase struct {
	// Name is the example's base file name.
	Name string
	// ProgramPath is handed to the interpreter as its only argument.
	ProgramPath string
	// ExpectedOutputPath points at <goldenDir>/<Name>.out.
	ExpectedOutputPath string
	// InputPath points at <goldenDir>/<Name>.in, or is empty when the case
	// has no stdin seed.
	InputPath string
}

// HasInput reports whether the case feeds a recorded stdin file.
func (c TestCase) HasInput() bool {
	return c.InputPath != ""
}
