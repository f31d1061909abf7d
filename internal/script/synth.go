// Package script defines the one-shot script that crosses the process
// boundary: its textual synthesis on the outer side, and its parsing and
// evaluation by the dispatcher on the host side.
//
// The script is a line-oriented directive file:
//
//	# hostbridge script <run id>
//	path <dir>
//	module <name>
//	call <rendered call expression>
//
// The call payload is the exact call-expression grammar produced by the
// expr package. Marker printing and the error block are the dispatcher's
// job, so the generated text stays free of control flow.
package script

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Spec describes one script to synthesize.
type Spec struct {
	// RunID correlates the script with launcher diagnostics and the journal.
	RunID string

	// ImportPaths are prepended to the host's module search path.
	ImportPaths []string

	// Modules must resolve inside the host before the call is evaluated.
	Modules []string

	// Call is the rendered call expression, evaluated as a bare statement.
	Call string
}

// Synthesize renders the script text for a spec. Modules are emitted in
// sorted order so the output is stable.
func Synthesize(s Spec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# hostbridge script %s\n", s.RunID)

	for _, p := range s.ImportPaths {
		fmt.Fprintf(&b, "path %s\n", p)
	}

	modules := append([]string(nil), s.Modules...)
	sort.Strings(modules)
	for _, m := range modules {
		fmt.Fprintf(&b, "module %s\n", m)
	}

	fmt.Fprintf(&b, "call %s\n", s.Call)
	return b.String()
}

// WriteTemp writes content to a scoped temporary file. The returned
// cleanup removes the file and must be called on every exit path,
// including launch failure.
func WriteTemp(content string) (path string, cleanup func(), err error) {
	file, err := os.CreateTemp("", "hostbridge-*.script")
	if err != nil {
		return "", nil, fmt.Errorf("creating script file: %w", err)
	}
	path = file.Name()
	cleanup = func() { os.Remove(path) }

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing script file: %w", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing script file: %w", err)
	}
	return path, cleanup, nil
}
