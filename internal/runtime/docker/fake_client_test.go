package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

// fakeDockerClient records every call and replays per-container scripts set
// up from onCreate hooks.
type fakeDockerClient struct {
	mu sync.Mutex

	pullErr   error
	createErr error

	imagePulls  []string
	createCalls []containerCreateCall
	copyToCalls []copyToCall
	stopCalls   []string
	removed     []string
	closed      bool

	nextID      int
	containers  map[string]*fakeContainer
	createHooks []func(string)
}

// fakeContainer is what a single container reports back.
type fakeContainer struct {
	waits   []waitCall
	logs    []byte
	inspect types.ContainerJSON
	attach  types.HijackedResponse
}

type containerCreateCall struct {
	id         string
	config     *container.Config
	hostConfig *container.HostConfig
}

type copyToCall struct {
	containerID string
	path        string
	data        []byte
}

// waitCall is one ContainerWait answer. block never answers, leaving the
// caller to its context.
type waitCall struct {
	status *container.WaitResponse
	err    error
	block  bool
}

func newFakeDockerClient() *fakeDockerClient {
	return &fakeDockerClient{containers: make(map[string]*fakeContainer)}
}

// container returns the script for id. Callers hold f.mu.
func (f *fakeDockerClient) container(id string) *fakeContainer {
	c, ok := f.containers[id]
	if !ok {
		c = &fakeContainer{}
		f.containers[id] = c
	}
	return c
}

func (f *fakeDockerClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeDockerClient) ImagePull(ctx context.Context, ref string, opts image.PullOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imagePulls = append(f.imagePulls, ref)
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return io.NopCloser(strings.NewReader(`{"status":"Pull complete"}`)), nil
}

func (f *fakeDockerClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.CreateResponse, error) {
	f.mu.Lock()
	if f.createErr != nil {
		f.mu.Unlock()
		return container.CreateResponse{}, f.createErr
	}
	id := fmt.Sprintf("goldrun-%d", f.nextID)
	f.nextID++
	f.createCalls = append(f.createCalls, containerCreateCall{id: id, config: config, hostConfig: hostConfig})
	var hook func(string)
	if len(f.createHooks) > 0 {
		hook, f.createHooks = f.createHooks[0], f.createHooks[1:]
	}
	f.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	return container.CreateResponse{ID: id}, nil
}

func (f *fakeDockerClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, containerID)
	return nil
}

func (f *fakeDockerClient) CopyToContainer(ctx context.Context, containerID, dstPath string, content io.Reader, options container.CopyToContainerOptions) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copyToCalls = append(f.copyToCalls, copyToCall{containerID: containerID, path: dstPath, data: data})
	return nil
}

func (f *fakeDockerClient) ContainerAttach(ctx context.Context, containerID string, options container.AttachOptions) (types.HijackedResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.container(containerID).attach, nil
}

func (f *fakeDockerClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	return nil
}

func (f *fakeDockerClient) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	statusCh := make(chan container.WaitResponse, 1)
	errCh := make(chan error, 1)

	f.mu.Lock()
	c := f.container(containerID)
	if len(c.waits) == 0 {
		f.mu.Unlock()
		return statusCh, errCh
	}
	call := c.waits[0]
	c.waits = c.waits[1:]
	f.mu.Unlock()

	switch {
	case call.block:
	case call.status != nil:
		statusCh <- *call.status
	case call.err != nil:
		errCh <- call.err
	}
	return statusCh, errCh
}

func (f *fakeDockerClient) ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.container(containerID).inspect, nil
}

func (f *fakeDockerClient) ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return io.NopCloser(bytes.NewReader(f.container(containerID).logs)), nil
}

func (f *fakeDockerClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls = append(f.stopCalls, containerID)
	return nil
}

func (f *fakeDockerClient) onCreate(hook func(string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createHooks = append(f.createHooks, hook)
}

func (f *fakeDockerClient) setWaitSequence(containerID string, calls ...waitCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.container(containerID).waits = append([]waitCall(nil), calls...)
}

// setLogs stores stdout and stderr multiplexed the way the daemon streams
// them for non-TTY containers.
func (f *fakeDockerClient) setLogs(containerID string, stdout, stderr string) {
	var buf bytes.Buffer
	if stdout != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(stdout))
	}
	if stderr != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(stderr))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.container(containerID).logs = buf.Bytes()
}

func (f *fakeDockerClient) setInspect(containerID string, info types.ContainerJSON) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.container(containerID).inspect = info
}

func (f *fakeDockerClient) setAttachResponse(containerID string, resp types.HijackedResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.container(containerID).attach = resp
}

// fakeConn captures what the engine writes to the attached stdin.
type fakeConn struct {
	bytes.Buffer
	closed bool
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) CloseWrite() error { return c.Close() }

func (c *fakeConn) LocalAddr() net.Addr              { return fakeAddr("local") }
func (c *fakeConn) RemoteAddr() net.Addr             { return fakeAddr("remote") }
func (c *fakeConn) SetDeadline(time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

type fakeAddr string

func (a fakeAddr) Network() string { return string(a) }
func (a fakeAddr) String() string  { return string(a) }
