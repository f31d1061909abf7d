// Package launcher resolves the host binary and runs it with a
// synthesized script, capturing combined-protocol stdout.
//
// One call means one subprocess and one blocking wait; there is no
// timeout and no retry. Stderr is left on the host's own stream so
// interactive noise never pollutes the stdout protocol.
package launcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/hostbridge/internal/config"
	"github.com/funvibe/hostbridge/internal/script"
)

// HostNotFoundError reports that the configured or default host binary
// could not be located or spawned. It is returned to the caller before
// any verdict exists and is never conflated with a test failure.
type HostNotFoundError struct {
	Command string
	Err     error
}

func (e *HostNotFoundError) Error() string {
	return fmt.Sprintf("host binary not found (called with %q): %v", e.Command, e.Err)
}

func (e *HostNotFoundError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one host launch.
type Result struct {
	RunID    string
	HostPath string
	ExitCode int
	Stdout   string
	Duration time.Duration
}

// Launcher runs host processes. The zero value is not usable; use New.
type Launcher struct {
	hostPath string
	env      func(string) (string, bool)
	lookPath func(string) (string, error)
	stderr   io.Writer
	verbose  bool
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithHostPath sets an explicit host binary path, taking precedence over
// the environment override and the default command.
func WithHostPath(path string) Option {
	return func(l *Launcher) { l.hostPath = path }
}

// WithEnv replaces the environment lookup (tests).
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(l *Launcher) { l.env = lookup }
}

// WithLookPath replaces executable resolution (tests).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(l *Launcher) { l.lookPath = fn }
}

// WithVerbose enables launch diagnostics on stderr.
func WithVerbose(v bool) Option {
	return func(l *Launcher) { l.verbose = v }
}

// WithStderr redirects diagnostics (tests).
func WithStderr(w io.Writer) Option {
	return func(l *Launcher) { l.stderr = w }
}

// New creates a Launcher.
func New(opts ...Option) *Launcher {
	l := &Launcher{
		env:      os.LookupEnv,
		lookPath: exec.LookPath,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ResolveHost determines the host binary: explicit path, then the
// environment override with one symmetric pair of quotes stripped, then
// the literal default command, located via the OS executable search.
func (l *Launcher) ResolveHost() (string, error) {
	command := l.hostPath
	if command == "" {
		if v, ok := l.env(config.HostEnv); ok {
			command = stripQuotes(v)
		} else {
			command = config.DefaultHostCommand
		}
	}

	path, err := l.lookPath(command)
	if err != nil {
		return "", &HostNotFoundError{Command: command, Err: err}
	}
	return path, nil
}

// Run writes the script to a scoped temporary file, launches the host as
//
//	<host> -b --python-exit-code <failureCode> --python <scriptPath>
//
// and blocks until it terminates, returning its exit code and captured
// stdout. The script file is removed on every exit path. An empty runID
// gets a fresh one.
func (l *Launcher) Run(runID, scriptContent string) (*Result, error) {
	if runID == "" {
		runID = uuid.NewString()
	}

	scriptPath, cleanup, err := script.WriteTemp(scriptContent)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	hostPath, err := l.ResolveHost()
	if err != nil {
		return nil, err
	}

	args := []string{
		"-b",
		"--python-exit-code", strconv.Itoa(config.FailureCode),
		"--python", scriptPath,
	}
	l.logf("run %s: %s %v", runID, hostPath, args)

	cmd := exec.Command(hostPath, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), config.InsideEnv+"=1")

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The process never ran: report as a spawn failure, not a verdict.
			return nil, &HostNotFoundError{Command: hostPath, Err: err}
		}
		exitCode = exitErr.ExitCode()
	}

	l.logf("run %s: exit code %d after %s", runID, exitCode, duration.Round(time.Millisecond))

	return &Result{
		RunID:    runID,
		HostPath: hostPath,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Duration: duration,
	}, nil
}

func (l *Launcher) logf(format string, args ...any) {
	if !l.verbose {
		return
	}
	prefix := "[hostbridge] "
	if f, ok := l.stderr.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		prefix = "\x1b[36m[hostbridge]\x1b[0m "
	}
	fmt.Fprintf(l.stderr, prefix+format+"\n", args...)
}

// stripQuotes removes a single matching pair of leading and trailing
// quote characters from the environment override.
func stripQuotes(s string) string {
	for _, quote := range []byte{'\'', '"'} {
		if len(s) >= 2 && s[0] == quote && s[len(s)-1] == quote {
			return s[1 : len(s)-1]
		}
	}
	return s
}
