package bridge

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/hostbridge/internal/codec"
	"github.com/funvibe/hostbridge/internal/demux"
	"github.com/funvibe/hostbridge/internal/expr"
	"github.com/funvibe/hostbridge/internal/fixture"
	"github.com/funvibe/hostbridge/internal/journal"
	"github.com/funvibe/hostbridge/internal/launcher"
	"github.com/funvibe/hostbridge/internal/registry"
	"github.com/funvibe/hostbridge/internal/script"
)

// Func is the calling convention for bound functions; see registry.Func.
type Func = registry.Func

// BoundTest is a test function bound to the bridge. Outside the host its
// Call launches the host process; inside, it runs the function directly.
type BoundTest struct {
	b      *Bridge
	module string
	name   string
	fn     Func
}

// BindTest registers fn for in-host dispatch and returns the bound form.
// The function's identity (defining module and simple name) is resolved
// the same way on both sides of the process boundary.
func (b *Bridge) BindTest(fn Func) (*BoundTest, error) {
	module, name := expr.FuncIdentity(fn)
	if err := b.reg.Add(module, name, fn); err != nil {
		return nil, err
	}
	return &BoundTest{b: b, module: module, name: name, fn: fn}, nil
}

// Call executes the bound test with the given positional and keyword
// arguments.
//
// Inside the host the function runs directly and its error is returned.
// Outside, the invocation is marshalled into a call expression, a script
// is synthesized and the host launched; a failing run is reported
// through r (aborting the current test), never returned as an error.
// Errors detected before the subprocess exists (bad arguments, missing
// host binary) are returned.
func (bt *BoundTest) Call(r Reporter, args []any, kwargs map[string]any) error {
	if bt.b.mode == ModeInsideHost {
		_, err := bt.fn(args, kwargs)
		return err
	}

	modules, argStrings, err := expr.Aggregate(args, kwargs)
	if err != nil {
		return fmt.Errorf("marshalling arguments: %w", err)
	}
	modules[bt.module] = struct{}{}
	modules[codec.Module] = struct{}{}

	callText := expr.Compose(bt.module, bt.name, argStrings)
	return bt.b.launch(r, modules, callText)
}

// launch synthesizes the script for callText, runs the host and reports
// the verdict.
func (b *Bridge) launch(r Reporter, modules map[string]struct{}, callText string) error {
	runID := uuid.NewString()

	names := make([]string, 0, len(modules))
	for m := range modules {
		names = append(names, m)
	}

	content := script.Synthesize(script.Spec{
		RunID:       runID,
		ImportPaths: b.importPaths,
		Modules:     names,
		Call:        callText,
	})

	started := time.Now()
	res, err := b.launcher.Run(runID, content)
	if err != nil {
		return err
	}

	verdict := demux.Classify(res.ExitCode, res.Stdout)
	b.record(res, callText, started, verdict.Passed)

	if !verdict.Passed {
		r.Fatalf("%s", verdict.Message)
	}
	return nil
}

// record appends the run to the journal when enabled. Journal trouble is
// never allowed to fail a test run.
func (b *Bridge) record(res *launcher.Result, callText string, started time.Time, passed bool) {
	if b.journalPath == "" {
		return
	}
	j, err := journal.Open(b.journalPath)
	if err != nil {
		b.warnf("journal: %v", err)
		return
	}
	defer j.Close()

	err = j.Record(journal.Entry{
		RunID:     res.RunID,
		Host:      res.HostPath,
		Call:      callText,
		ExitCode:  res.ExitCode,
		Passed:    passed,
		Output:    res.Stdout,
		StartedAt: started,
		Duration:  res.Duration,
	})
	if err != nil {
		b.warnf("journal: %v", err)
	}
}

func (b *Bridge) warnf(format string, args ...any) {
	if b.verbose {
		fmt.Fprintf(b.stderr, "[hostbridge] "+format+"\n", args...)
	}
}

// Fixture is a dependency-injectable, value-producing function bound to
// the bridge. Outside the host it only ever builds call expressions;
// inside, it is memoized so the body runs at most once per distinct
// resolved-argument tuple per host-process run.
type Fixture struct {
	b   *Bridge
	def *fixture.Definition
	fn  Func
}

// BindFixture registers fn as a fixture: its memoized form goes into the
// dispatch registry, and the fixture becomes requestable by simple name.
func (b *Bridge) BindFixture(fn Func) (*Fixture, error) {
	module, name := expr.FuncIdentity(fn)
	if _, dup := b.fixtures[name]; dup {
		return nil, fmt.Errorf("fixture %q already registered", name)
	}

	wrapped := fixture.Memoize(fn)
	if err := b.reg.Add(module, name, wrapped); err != nil {
		return nil, err
	}

	f := &Fixture{
		b:   b,
		def: &fixture.Definition{Module: module, Name: name},
		fn:  wrapped,
	}
	b.fixtures[name] = f
	return f, nil
}

// Name returns the fixture's injectable name.
func (f *Fixture) Name() string {
	return f.def.Name
}

// Expr builds the expression "call this fixture with these upstream
// fixture expressions as arguments". Every dependency must itself be a
// fixture-produced expression; anything else fails before any subprocess
// is spawned.
func (f *Fixture) Expr(deps ...any) (*expr.CallExpression, error) {
	return f.def.Expr(deps...)
}

// Call invokes the memoized fixture directly. Only valid inside the
// host: outside, fixture bodies never execute.
func (f *Fixture) Call(args ...any) (any, error) {
	if f.b.mode != ModeInsideHost {
		return nil, fmt.Errorf("fixture %s: bodies only run inside the host", f.def.Name)
	}
	return f.fn(args, map[string]any{})
}

// FixtureExpr builds a call expression for the fixture registered under
// name, with the given dependency expressions.
func (b *Bridge) FixtureExpr(name string, deps ...any) (*expr.CallExpression, error) {
	f, ok := b.fixtures[name]
	if !ok {
		return nil, fmt.Errorf("no fixture registered as %q", name)
	}
	return f.Expr(deps...)
}
