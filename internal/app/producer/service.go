package producer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"goldrun/internal/domain/execution"
	"goldrun/internal/ports"
)

const (
	goldenSuffix = ".out"
	inputSuffix  = ".in"
)

// Config describes where examples and their golden files live.
type Config struct {
	// ExamplesDir holds the example programs. Subdirectories are ignored.
	ExamplesDir string
	// GoldenDir holds <name>.out and optional <name>.in files.
	GoldenDir string
	// Filter is an optional filepath.Match pattern applied to example names.
	Filter string
}

// Service implements ports.CaseProducer by listing the examples directory.
//
// The directory is listed once, on the first call to NextCase, in the order
// os.ReadDir returns (sorted by file name).
type Service struct {
	cfg Config
	log log.Logger

	mu     sync.Mutex
	listed bool
	cases  []execution.TestCase
	index  int
}

var _ ports.CaseProducer = (*Service)(nil)

// NewService builds a producer for the given layout.
func NewService(cfg Config, logger log.Logger) (*Service, error) {
	if cfg.ExamplesDir == "" {
		return nil, fmt.Errorf("examples directory must be provided")
	}
	if cfg.GoldenDir == "" {
		return nil, fmt.Errorf("golden directory must be provided")
	}
	if cfg.Filter != "" {
		if _, err := filepath.Match(cfg.Filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", cfg.Filter, err)
		}
	}
	if logger == nil {
		logger = log.Root()
	}

	return &Service{cfg: cfg, log: logger.New("component", "producer")}, nil
}

// NextCase returns the next discovered case, or io.EOF when there are none
// left.
func (s *Service) NextCase(ctx context.Context) (execution.TestCase, error) {
	select {
	case <-ctx.Done():
		return execution.TestCase{}, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.listed {
		cases, err := s.discover()
		if err != nil {
			return execution.TestCase{}, err
		}
		s.cases = cases
		s.listed = true
	}

	if s.index >= len(s.cases) {
		return execution.TestCase{}, io.EOF
	}

	tc := s.cases[s.index]
	s.index++

	return tc, nil
}

func (s *Service) discover() ([]execution.TestCase, error) {
	entries, err := os.ReadDir(s.cfg.ExamplesDir)
	if err != nil {
		return nil, &execution.SetupError{Err: fmt.Errorf("%w: read %s: %w", execution.ErrDiscovery, s.cfg.ExamplesDir, err)}
	}

	cases := make([]execution.TestCase, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		programPath := filepath.Join(s.cfg.ExamplesDir, name)

		info, err := os.Stat(programPath)
		if err != nil {
			s.log.Warn("Ignoring unreadable example", "path", programPath, "err", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if s.cfg.Filter != "" {
			if ok, _ := filepath.Match(s.cfg.Filter, name); !ok {
				continue
			}
		}

		cases = append(cases, s.caseFor(name, programPath))
	}

	s.log.Debug("Discovered examples", "dir", s.cfg.ExamplesDir, "count", len(cases))
	return cases, nil
}

func (s *Service) caseFor(name, programPath string) execution.TestCase {
	tc := execution.TestCase{
		Name:               name,
		ProgramPath:        programPath,
		ExpectedOutputPath: filepath.Join(s.cfg.GoldenDir, name+goldenSuffix),
	}

	inputPath := filepath.Join(s.cfg.GoldenDir, name+inputSuffix)
	if info, err := os.Stat(inputPath); err == nil && info.Mode().IsRegular() {
		tc.InputPath = inputPath
	}

	return tc
}
