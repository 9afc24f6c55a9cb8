// Package runtime selects the process runner a run uses.
package runtime

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"goldrun/internal/ports"
)

// Factory builds a ProcessRunner on demand.
type Factory func() (ports.ProcessRunner, error)

// Registry maps runtime names to factories and caches the runners it opens.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	opened    map[string]ports.ProcessRunner
}

// NewRegistry constructs a registry from the supplied factories.
func NewRegistry(factories map[string]Factory) (*Registry, error) {
	reg := &Registry{
		factories: make(map[string]Factory, len(factories)),
		opened:    make(map[string]ports.ProcessRunner),
	}

	for name, factory := range factories {
		if name == "" {
			return nil, fmt.Errorf("runtime factory missing name")
		}
		if factory == nil {
			return nil, fmt.Errorf("runtime factory %q cannot be nil", name)
		}
		reg.factories[name] = factory
	}

	if len(reg.factories) == 0 {
		return nil, fmt.Errorf("at least one runtime must be registered")
	}

	return reg, nil
}

// Names lists the registered runtimes in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open returns the runner registered under name, building it on first use.
func (r *Registry) Open(name string) (ports.ProcessRunner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if runner, ok := r.opened[name]; ok {
		return runner, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("no runtime registered under %q", name)
	}

	runner, err := factory()
	if err != nil {
		return nil, fmt.Errorf("runtime %s: %w", name, err)
	}
	r.opened[name] = runner
	return runner, nil
}

// Close releases every runner the registry opened.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, runner := range r.opened {
		if err := runner.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	r.opened = make(map[string]ports.ProcessRunner)

	return errors.Join(errs...)
}
