package execution

import (
	"errors"
	"fmt"
)

var (
	// ErrLaunch means the interpreter could not be started at all.
	ErrLaunch = errors.New("interpreter could not be launched")
	// ErrDiscovery means the examples directory could not be listed.
	ErrDiscovery = errors.New("examples could not be discovered")
	// ErrInput means a case's stdin seed exists but could not be read.
	ErrInput = errors.New("stdin seed could not be read")
	// ErrGolden means a golden file could not be read while missing golden
	// files abort the run.
	ErrGolden = errors.New("golden file could not be read")
)

// SetupError is a failure that aborts the whole run. Case names the example
// being prepared when it happened, if any.
type SetupError struct {
	Case string
	Err  error
}

func (e *SetupError) Error() string {
	if e.Case == "" {
		return fmt.Sprintf("setup: %v", e.Err)
	}
	return fmt.Sprintf("setup [%s]: %v", e.Case, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// IsSetupError reports whether err aborts the run rather than failing a
// single case.
func IsSetupError(err error) bool {
	var setupErr *SetupError
	return errors.As(err, &setupErr) ||
		errors.Is(err, ErrLaunch) ||
		errors.Is(err, ErrDiscovery) ||
		errors.Is(err, ErrInput) ||
		errors.Is(err, ErrGolden)
}
