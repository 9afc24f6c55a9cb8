package execution

import "time"

// RunLimits describes optional resource boundaries for a single interpreter
// invocation.
//
// A zero value RunLimits imposes no additional restrictions, which means a
// child that never exits blocks the run.
type RunLimits struct {
	// TimeLimit caps how long the interpreter may run. Zero means no limit.
	TimeLimit time.Duration
	// MemoryLimitBytes caps container memory usage in bytes. Only the
	// container runtime honors it. Zero means no limit.
	MemoryLimitBytes int64
}

// Normalize clamps negative limits to zero.
func (l RunLimits) Normalize() RunLimits {
	if l.TimeLimit < 0 {
		l.TimeLimit = 0
	}
	if l.MemoryLimitBytes < 0 {
		l.MemoryLimitBytes = 0
	}
	return l
}
