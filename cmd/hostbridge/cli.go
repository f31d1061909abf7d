// Package main defines the hostbridge CLI structure using kong.
package main

// CLI defines the command-line interface.
type CLI struct {
	Exec     ExecCmd     `cmd:"" help:"Evaluate a call expression inside the host"`
	Dispatch DispatchCmd `cmd:"" help:"Act as the in-host script dispatcher"`
	Journal  JournalCmd  `cmd:"" help:"List recorded host runs"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// ExecCmd launches the host with a raw call expression.
type ExecCmd struct {
	Expr    string   `arg:"" help:"Call expression, e.g. 'scene.Reset(**deserialize(\"...\"))'"`
	Module  []string `short:"m" help:"Module the host must resolve (repeatable)"`
	Path    []string `short:"p" help:"Directory prepended to the host module search path (repeatable)"`
	Host    string   `help:"Host binary path (overrides HOSTBRIDGE_HOST)"`
	Config  string   `help:"hostbridge.yaml path (searched upward when omitted)"`
	Verbose bool     `short:"v" help:"Launch diagnostics on stderr"`
}

// DispatchCmd interprets a synthesized script the way a host-embedded
// shim would. The stock CLI has no registered functions, so only the
// protocol itself (markers, error block, exit codes) can be exercised.
type DispatchCmd struct {
	Args []string `arg:"" optional:"" passthrough:"" help:"Host invocation: -b --python-exit-code N --python FILE"`
}

// JournalCmd lists recorded runs, newest first.
type JournalCmd struct {
	Limit  int    `short:"n" default:"20" help:"Maximum entries to show"`
	Path   string `help:"Journal database path"`
	Config string `help:"hostbridge.yaml path (searched upward when omitted)"`
}

// VersionCmd shows version information.
type VersionCmd struct{}
