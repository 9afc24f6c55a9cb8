// Package platform picks the interpreter executable path for the host.
package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupportedPlatform is returned when the host OS has no known executable
// naming convention.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Resolver resolves the interpreter executable path.
type Resolver interface {
	ResolveExecutablePath() (string, error)
}

// WindowsResolver appends the .exe suffix to the base path.
type WindowsResolver struct {
	Base string
}

func (r WindowsResolver) ResolveExecutablePath() (string, error) {
	if r.Base == "" {
		return "", fmt.Errorf("windows resolver: empty interpreter path")
	}
	return r.Base + ".exe", nil
}

// UnixResolver uses the base path unchanged.
type UnixResolver struct {
	Base string
}

func (r UnixResolver) ResolveExecutablePath() (string, error) {
	if r.Base == "" {
		return "", fmt.Errorf("unix resolver: empty interpreter path")
	}
	return r.Base, nil
}

// FixedResolver returns an explicitly configured path without applying any
// platform convention.
type FixedResolver struct {
	Path string
}

func (r FixedResolver) ResolveExecutablePath() (string, error) {
	if r.Path == "" {
		return "", fmt.Errorf("fixed resolver: empty interpreter path")
	}
	return r.Path, nil
}

var unixFamily = map[string]bool{
	"linux":     true,
	"darwin":    true,
	"freebsd":   true,
	"netbsd":    true,
	"openbsd":   true,
	"dragonfly": true,
	"solaris":   true,
	"illumos":   true,
	"aix":       true,
	"android":   true,
	"ios":       true,
}

// ForOS selects the resolver for goos and base, the interpreter path without
// any platform suffix.
func ForOS(goos, base string) (Resolver, error) {
	switch {
	case goos == "windows":
		return WindowsResolver{Base: base}, nil
	case unixFamily[goos]:
		return UnixResolver{Base: base}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, goos)
	}
}

// Host selects the resolver for the running OS.
func Host(base string) (Resolver, error) {
	return ForOS(runtime.GOOS, base)
}
