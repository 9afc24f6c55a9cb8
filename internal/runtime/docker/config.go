package docker

import (
	"fmt"

	"goldrun/internal/domain/execution"
)

const defaultWorkdir = "/tmp/goldrun"

// Config describes the container every example is run in.
type Config struct {
	// Image must already contain the interpreter.
	Image string
	// Workdir is where example programs are copied before they run.
	Workdir string
	// Interpreter is the interpreter path inside the image.
	Interpreter string
	// Limits are applied to every container.
	Limits execution.RunLimits
}

func (c Config) withDefaults() (Config, error) {
	if c.Image == "" {
		return Config{}, fmt.Errorf("docker runtime: image must be provided")
	}
	if c.Interpreter == "" {
		return Config{}, fmt.Errorf("docker runtime: interpreter path must be provided")
	}
	if c.Workdir == "" {
		c.Workdir = defaultWorkdir
	}
	c.Limits = c.Limits.Normalize()
	return c, nil
}
