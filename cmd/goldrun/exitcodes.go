package main

// Exit codes returned by goldrun.
const (
	Success     = 0   // Run completed
	TestFailure = 1   // A case failed and --fail-on-mismatch is set
	RuntimeErr  = 2   // Setup or configuration error
	Interrupted = 130 // SIGINT or SIGTERM
)
