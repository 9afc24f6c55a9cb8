// Package docker runs the interpreter under test inside a throwaway
// container per example.
package docker

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/docker/docker/client"
	"github.com/ethereum/go-ethereum/log"

	"goldrun/internal/domain/execution"
	"goldrun/internal/ports"
)

// Runner implements ports.ProcessRunner on top of Docker containers.
type Runner struct {
	cfg    Config
	client dockerClient
	engine *containerEngine
	log    log.Logger

	pullOnce sync.Once
	pullErr  error
}

var _ ports.ProcessRunner = (*Runner)(nil)

// New connects to the Docker daemon described by the environment.
func New(cfg Config, logger log.Logger) (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker runtime: create client: %w", err)
	}

	runner, err := newRunnerWithClient(cli, cfg, logger)
	if err != nil {
		_ = cli.Close()
		return nil, err
	}
	return runner, nil
}

func newRunnerWithClient(cli dockerClient, cfg Config, logger log.Logger) (*Runner, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Root()
	}
	return &Runner{
		cfg:    cfg,
		client: cli,
		engine: newContainerEngine(cli, cfg.Image, cfg.Limits),
		log:    logger.New("component", "docker-runner", "image", cfg.Image),
	}, nil
}

// Run copies the example program into a fresh container and runs the
// interpreter on it.
func (r *Runner) Run(ctx context.Context, tc execution.TestCase) (*execution.CapturedOutput, error) {
	if err := r.ensureImage(ctx); err != nil {
		return nil, r.launchError(ctx, tc, err)
	}

	program, err := os.ReadFile(tc.ProgramPath)
	if err != nil {
		return nil, &execution.SetupError{Case: tc.Name, Err: fmt.Errorf("%w: read program: %w", execution.ErrLaunch, err)}
	}

	var stdin []byte
	if tc.HasInput() {
		stdin, err = os.ReadFile(tc.InputPath)
		if err != nil {
			return nil, &execution.SetupError{Case: tc.Name, Err: fmt.Errorf("%w: %w", execution.ErrInput, err)}
		}
	}

	name := filepath.Base(tc.ProgramPath)
	command := []string{r.cfg.Interpreter, path.Join(r.cfg.Workdir, name)}

	r.log.Debug("Running interpreter in container", "case", tc.Name, "cmd", command)

	out, err := r.engine.run(ctx, job{
		workdir:  r.cfg.Workdir,
		cmd:      command,
		program:  programFile{Name: name, Data: program},
		stdin:    stdin,
		hasStdin: tc.HasInput(),
	})
	if err != nil {
		return nil, r.launchError(ctx, tc, err)
	}
	return out, nil
}

// Close releases the Docker client.
func (r *Runner) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("docker client: %w", err)
	}
	return nil
}

func (r *Runner) ensureImage(ctx context.Context) error {
	r.pullOnce.Do(func() {
		r.log.Info("Pulling image")
		r.pullErr = r.engine.pullImage(ctx)
	})
	return r.pullErr
}

func (r *Runner) launchError(ctx context.Context, tc execution.TestCase, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &execution.SetupError{Case: tc.Name, Err: fmt.Errorf("%w: %w", execution.ErrLaunch, err)}
}
