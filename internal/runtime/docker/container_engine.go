package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/docker/docker/api/types/container"
	typesimage "github.com/docker/docker/api/types/image"

	"goldrun/internal/domain/execution"
)

const containerNanoCPUs = 1_000_000_000

var errTimeLimit = errors.New("time limit exceeded")

// job is one interpreter invocation in a fresh container.
type job struct {
	workdir string
	cmd     []string
	program programFile
	// stdin is forwarded only when hasStdin is set. Otherwise the container
	// is created without stdin.
	stdin    []byte
	hasStdin bool
}

type containerEngine struct {
	cli    dockerClient
	image  string
	limits execution.RunLimits
}

func newContainerEngine(cli dockerClient, image string, limits execution.RunLimits) *containerEngine {
	return &containerEngine{
		cli:    cli,
		image:  image,
		limits: limits.Normalize(),
	}
}

func (c *containerEngine) pullImage(ctx context.Context) error {
	progress, err := c.cli.ImagePull(ctx, c.image, typesimage.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", c.image, err)
	}
	defer progress.Close()

	// The pull only completes once its progress stream is drained.
	if _, err := io.Copy(io.Discard, progress); err != nil {
		return fmt.Errorf("pull image %s: %w", c.image, err)
	}
	return nil
}

func (c *containerEngine) run(ctx context.Context, j job) (*execution.CapturedOutput, error) {
	id, err := c.create(ctx, j)
	if err != nil {
		return nil, err
	}
	defer c.remove(id)

	if err := c.shipProgram(ctx, id, j.workdir, j.program); err != nil {
		return nil, err
	}

	var conn net.Conn
	if j.hasStdin {
		hijacked, err := c.cli.ContainerAttach(ctx, id, container.AttachOptions{Stream: true, Stdin: true})
		if err != nil {
			return nil, fmt.Errorf("attach container: %w", err)
		}
		if hijacked.Conn != nil {
			defer hijacked.Close()
			conn = hijacked.Conn
		}
	}

	start := time.Now()
	if err := c.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}
	if conn != nil {
		if err := feedStdin(conn, j.stdin); err != nil {
			return nil, err
		}
	}

	status, err := c.waitWithinLimit(ctx, id)
	if errors.Is(err, errTimeLimit) {
		return c.afterTimeLimit(id, start)
	}
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	info, err := c.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("inspect container: %w", err)
	}
	verdict := execution.StatusOK
	if info.ContainerJSONBase != nil && info.State != nil && info.State.OOMKilled {
		verdict = execution.StatusMemoryLimit
	}

	return c.collect(ctx, id, verdict, status.StatusCode, elapsed)
}

func (c *containerEngine) create(ctx context.Context, j job) (string, error) {
	hostConfig := &container.HostConfig{
		Resources: container.Resources{NanoCPUs: containerNanoCPUs},
	}
	if mem := c.limits.MemoryLimitBytes; mem > 0 {
		hostConfig.Resources.Memory = mem
		hostConfig.Resources.MemorySwap = mem
	}

	resp, err := c.cli.ContainerCreate(ctx, &container.Config{
		Image:        c.image,
		Cmd:          j.cmd,
		WorkingDir:   j.workdir,
		AttachStdout: true,
		AttachStderr: true,
		AttachStdin:  j.hasStdin,
		OpenStdin:    j.hasStdin,
		StdinOnce:    j.hasStdin,
	}, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("create container: %w", err)
	}
	return resp.ID, nil
}

// remove runs on a fresh context so containers are cleaned up after an
// interrupt too.
func (c *containerEngine) remove(id string) {
	_ = c.cli.ContainerRemove(context.Background(), id, container.RemoveOptions{Force: true})
}

func (c *containerEngine) waitWithinLimit(ctx context.Context, id string) (container.WaitResponse, error) {
	if c.limits.TimeLimit <= 0 {
		return c.waitForExit(ctx, id)
	}

	limitCtx, cancel := context.WithTimeout(ctx, c.limits.TimeLimit)
	defer cancel()

	status, err := c.waitForExit(limitCtx, id)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return status, errTimeLimit
	}
	return status, err
}

func feedStdin(conn net.Conn, stdin []byte) error {
	if _, err := conn.Write(stdin); err != nil {
		return fmt.Errorf("write stdin: %w", err)
	}
	if hc, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = hc.CloseWrite()
	}
	return nil
}
