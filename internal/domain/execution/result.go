package execution

import "time"

// Status describes how an interpreter invocation ended.
type Status string

const (
	StatusOK          Status = "ok"
	StatusTimeLimit   Status = "time-limit"
	StatusMemoryLimit Status = "memory-limit"
)

// CapturedOutput is what one interpreter invocation produced. Only Text takes
// part in the comparison; the remaining fields are diagnostics.
type CapturedOutput struct {
	Text     string
	Stderr   string
	ExitCode int64
	Status   Status
	Duration time.Duration
}
