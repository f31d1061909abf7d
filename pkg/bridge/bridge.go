// Package bridge is the public surface of hostbridge: it lets test code
// written in one process execute inside an externally controlled host
// application, while staying agnostic of which side of the process
// boundary it is running on.
//
// A Bridge is built once per process with the mode detected at startup.
// Outside the host, bound functions are never executed locally: the call
// is rendered to a textual expression, wrapped in a one-shot script, and
// the host binary is launched with it. Inside the host, the same
// bindings execute directly and fixtures are memoized per process run.
package bridge

import (
	"io"
	"os"
	"os/exec"

	"github.com/funvibe/hostbridge/internal/config"
	"github.com/funvibe/hostbridge/internal/launcher"
	"github.com/funvibe/hostbridge/internal/registry"
)

// Mode says which side of the process boundary this process is on.
// It is detected once at startup and carried as immutable state.
type Mode int

const (
	// ModeOutsideHost is the normal test-runner process.
	ModeOutsideHost Mode = iota
	// ModeInsideHost is the host subprocess executing the script.
	ModeInsideHost
)

func (m Mode) String() string {
	if m == ModeInsideHost {
		return "inside-host"
	}
	return "outside-host"
}

// Detect determines the process mode from the environment: the launcher
// marks every host subprocess it spawns.
func Detect(lookup func(string) (string, bool)) Mode {
	if _, ok := lookup(config.InsideEnv); ok {
		return ModeInsideHost
	}
	return ModeOutsideHost
}

// Reporter is the failure-reporting contract of the outer test
// framework. Fatalf aborts the current test; *testing.T satisfies it.
type Reporter interface {
	Fatalf(format string, args ...any)
}

// Bridge holds one process's bridge state: mode, host configuration,
// the dispatch registry and the fixture registry.
type Bridge struct {
	mode    Mode
	modeSet bool

	hostPath    string
	importPaths []string
	journalPath string
	verbose     bool

	stderr   io.Writer
	env      func(string) (string, bool)
	lookPath func(string) (string, error)

	reg      *registry.Registry
	fixtures map[string]*Fixture
	launcher *launcher.Launcher
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithHostPath sets an explicit host binary path, taking precedence over
// the HOSTBRIDGE_HOST environment override and the default command.
func WithHostPath(path string) Option {
	return func(b *Bridge) { b.hostPath = path }
}

// WithImportPaths appends directories to prepend to the host's module
// search path on every launch.
func WithImportPaths(paths ...string) Option {
	return func(b *Bridge) { b.importPaths = append(b.importPaths, paths...) }
}

// WithMode fixes the mode instead of detecting it (tests).
func WithMode(m Mode) Option {
	return func(b *Bridge) { b.mode = m; b.modeSet = true }
}

// WithVerbose enables launch diagnostics on stderr.
func WithVerbose(v bool) Option {
	return func(b *Bridge) { b.verbose = v }
}

// WithStderr redirects diagnostics (tests).
func WithStderr(w io.Writer) Option {
	return func(b *Bridge) { b.stderr = w }
}

// WithEnv replaces the environment lookup used for mode detection and
// host resolution (tests).
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(b *Bridge) { b.env = lookup }
}

// WithLookPath replaces executable resolution (tests).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(b *Bridge) { b.lookPath = fn }
}

// WithJournal enables the run journal at the given database path.
func WithJournal(path string) Option {
	return func(b *Bridge) { b.journalPath = path }
}

// WithConfig applies a loaded hostbridge.yaml as defaults. Explicit
// options win over config values.
func WithConfig(cfg *config.Config) Option {
	return func(b *Bridge) {
		if b.hostPath == "" {
			b.hostPath = cfg.Host
		}
		b.importPaths = append(b.importPaths, cfg.ImportPaths...)
		if cfg.Verbose {
			b.verbose = true
		}
		if cfg.Journal.Enabled && b.journalPath == "" {
			b.journalPath = cfg.Journal.Path
		}
	}
}

// New creates a Bridge. Unless WithMode is given, the mode is detected
// from the environment once, here.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		stderr:   os.Stderr,
		env:      os.LookupEnv,
		lookPath: exec.LookPath,
		reg:      registry.New(),
		fixtures: make(map[string]*Fixture),
	}
	for _, opt := range opts {
		opt(b)
	}
	if !b.modeSet {
		b.mode = Detect(b.env)
	}

	b.launcher = launcher.New(
		launcher.WithHostPath(b.hostPath),
		launcher.WithEnv(b.env),
		launcher.WithLookPath(b.lookPath),
		launcher.WithVerbose(b.verbose),
		launcher.WithStderr(b.stderr),
	)
	return b
}

// Mode returns the process mode the bridge was built with.
func (b *Bridge) Mode() Mode {
	return b.mode
}

// Registry exposes the dispatch registry, primarily for HostMain.
func (b *Bridge) Registry() *registry.Registry {
	return b.reg
}
