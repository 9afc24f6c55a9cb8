package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"goldrun/internal/domain/execution"
)

const (
	programFileMode = 0o644

	stopTimeout     = 5 * time.Second
	stopWaitTimeout = 15 * time.Second
)

// programFile is the example program as copied into the container workdir.
type programFile struct {
	Name string
	Data []byte
}

func (c *containerEngine) shipProgram(ctx context.Context, id, workdir string, f programFile) error {
	archive, err := programArchive(f)
	if err != nil {
		return err
	}
	if err := c.cli.CopyToContainer(ctx, id, workdir, archive, container.CopyToContainerOptions{AllowOverwriteDirWithFile: true}); err != nil {
		return fmt.Errorf("copy program: %w", err)
	}
	return nil
}

// programArchive wraps f in the single-entry tar stream CopyToContainer
// expects.
func programArchive(f programFile) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	hdr := &tar.Header{
		Name:    f.Name,
		Mode:    programFileMode,
		Size:    int64(len(f.Data)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, fmt.Errorf("archive %s: %w", f.Name, err)
	}
	if _, err := tw.Write(f.Data); err != nil {
		return nil, fmt.Errorf("archive %s: %w", f.Name, err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("archive %s: %w", f.Name, err)
	}
	return &buf, nil
}

// afterTimeLimit stops the container and returns whatever it printed before
// the limit hit.
func (c *containerEngine) afterTimeLimit(id string, start time.Time) (*execution.CapturedOutput, error) {
	elapsed := time.Since(start)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopTimeout)
	defer cancelStop()
	if err := c.cli.ContainerStop(stopCtx, id, container.StopOptions{}); err != nil && !client.IsErrNotFound(err) {
		return nil, fmt.Errorf("stop container after time limit: %w", err)
	}

	waitCtx, cancelWait := context.WithTimeout(context.Background(), stopWaitTimeout)
	defer cancelWait()

	exitCode := int64(-1)
	status, err := c.waitForExit(waitCtx, id)
	switch {
	case err == nil:
		exitCode = status.StatusCode
	case errors.Is(err, context.DeadlineExceeded), client.IsErrNotFound(err):
	default:
		return nil, fmt.Errorf("wait for container after time limit: %w", err)
	}

	return c.collect(context.Background(), id, execution.StatusTimeLimit, exitCode, elapsed)
}

func (c *containerEngine) waitForExit(ctx context.Context, id string) (container.WaitResponse, error) {
	statusCh, errCh := c.cli.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		if status.Error != nil {
			return status, fmt.Errorf("container error: %s", status.Error.Message)
		}
		return status, nil
	case err := <-errCh:
		return container.WaitResponse{}, fmt.Errorf("wait for container: %w", err)
	case <-ctx.Done():
		return container.WaitResponse{}, fmt.Errorf("wait for container: %w", ctx.Err())
	}
}

func (c *containerEngine) collect(ctx context.Context, id string, status execution.Status, exitCode int64, elapsed time.Duration) (*execution.CapturedOutput, error) {
	logs, err := c.cli.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return nil, fmt.Errorf("demultiplex logs: %w", err)
	}

	return &execution.CapturedOutput{
		Text:     stdout.String(),
		Stderr:   stderr.String(),
		Status:   status,
		ExitCode: exitCode,
		Duration: elapsed,
	}, nil
}
